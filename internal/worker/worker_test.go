package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/shaderctl/internal/protocol/session"
	"github.com/danmuck/shaderctl/internal/stub"
	"github.com/danmuck/shaderctl/internal/testutil/testlog"
)

const helperEnv = "SHADERCTL_WORKER_HELPER"

// TestMain lets the test binary stand in for the compiler: Start execs
// os.Args[0] with the helper mode set in the environment.
func TestMain(m *testing.M) {
	switch os.Getenv(helperEnv) {
	case "":
		os.Exit(m.Run())
	case "serve":
		os.Exit(serveHelper())
	case "exit":
		os.Exit(3)
	case "hang":
		time.Sleep(time.Minute)
		os.Exit(0)
	default:
		os.Exit(2)
	}
}

func serveHelper() int {
	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "want 3 args, got %q\n", os.Args[1:])
		return 2
	}
	if strings.Contains(os.Args[1], `\`) {
		fmt.Fprintf(os.Stderr, "base path not normalised: %q\n", os.Args[1])
		return 2
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	conn, err := Dial(ctx, os.Args[3])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer conn.Close()
	if err := stub.Serve(ctx, conn); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func helperConfig(mode string) Config {
	return Config{
		CompilerPath:   os.Args[0],
		BasePath:       `C:\Unity\Editor\Data`,
		Channel:        "shaderctl-test-" + IDPlaceholder,
		ConnectTimeout: 10 * time.Second,
		Env:            []string{helperEnv + "=" + mode},
		Stderr:         os.Stderr,
	}
}

func TestStartRunsCompilerOverChannel(t *testing.T) {
	testlog.Start(t)
	p, err := Start(context.Background(), helperConfig("serve"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if strings.Contains(p.Addr(), IDPlaceholder) {
		t.Fatalf("placeholder not substituted: %s", p.Addr())
	}

	s := session.New(p.Conn(), p, session.Config{ID: "worker-test"})
	report, err := s.GetPlatforms(context.Background())
	if err != nil {
		t.Fatalf("get platforms: %v", err)
	}
	if report.Values != stub.PlatformValues {
		t.Fatalf("values=%v", report.Values)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case <-p.Done():
	case <-time.After(10 * time.Second):
		t.Fatalf("compiler still running after close")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestStartReportsEarlyExit(t *testing.T) {
	testlog.Start(t)
	_, err := Start(context.Background(), helperConfig("exit"))
	if !errors.Is(err, ErrExited) {
		t.Fatalf("expected ErrExited, got %v", err)
	}
}

func TestStartTimesOutAndKills(t *testing.T) {
	testlog.Start(t)
	cfg := helperConfig("hang")
	cfg.ConnectTimeout = 200 * time.Millisecond
	start := time.Now()
	_, err := Start(context.Background(), cfg)
	if !errors.Is(err, ErrConnectTimeout) {
		t.Fatalf("expected ErrConnectTimeout, got %v", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Fatalf("start did not return promptly")
	}
}

func TestStartRequiresCompilerPath(t *testing.T) {
	testlog.Start(t)
	if _, err := Start(context.Background(), Config{}); !errors.Is(err, ErrNoCompiler) {
		t.Fatalf("expected ErrNoCompiler, got %v", err)
	}
}

func TestChannelNameAndArgs(t *testing.T) {
	testlog.Start(t)
	if got := ChannelName(DefaultChannel, "42"); got != "UnityShaderCompiler-42" {
		t.Fatalf("channel=%q", got)
	}
	if got := ChannelName("fixed", "42"); got != "fixed" {
		t.Fatalf("channel=%q", got)
	}
	got := Args(`C:\Unity\Editor\Data`, `C:\logs\compiler.log`, `\\.\pipe\x`)
	want := []string{"C:/Unity/Editor/Data", "C:/logs/compiler.log", `\\.\pipe\x`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args=%q", got)
	}
	if a, b := nextID(), nextID(); a == b {
		t.Fatalf("ids not unique: %s", a)
	}
}

func TestDefaultPaths(t *testing.T) {
	testlog.Start(t)
	base := DefaultBasePath(`C:\Program Files\Unity\Editor\Data\Tools\UnityShaderCompiler.exe`)
	if base != "C:/Program Files/Unity/Editor/Data" {
		t.Fatalf("base=%q", base)
	}
	if inc := DefaultIncludePath(base); inc != "C:/Program Files/Unity/Editor/Data/CGIncludes" {
		t.Fatalf("include=%q", inc)
	}
}

func TestLocatePrefersExplicitThenEnv(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	explicit := filepath.Join(dir, "explicit.exe")
	fromEnv := filepath.Join(dir, "env.exe")
	for _, p := range []string{explicit, fromEnv} {
		if err := os.WriteFile(p, []byte("x"), 0o755); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	t.Setenv(EnvCompiler, fromEnv)

	got, err := Locate(explicit)
	if err != nil || got != explicit {
		t.Fatalf("explicit: got %q err %v", got, err)
	}
	got, err = Locate("")
	if err != nil || got != fromEnv {
		t.Fatalf("env: got %q err %v", got, err)
	}
	if _, err := Locate(filepath.Join(dir, "missing.exe")); !errors.Is(err, ErrCompilerNotFound) {
		t.Fatalf("expected ErrCompilerNotFound, got %v", err)
	}
	if _, err := Locate(dir); !errors.Is(err, ErrCompilerNotFound) {
		t.Fatalf("directory should not be accepted: %v", err)
	}
}
