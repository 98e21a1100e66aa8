package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// IDPlaceholder in a channel name is replaced by a per-launch unique id.
const IDPlaceholder = "%ID%"

// DefaultChannel is the channel name used when Config.Channel is empty.
const DefaultChannel = "UnityShaderCompiler-" + IDPlaceholder

var (
	ErrNoCompiler     = errors.New("worker: compiler path is empty")
	ErrConnectTimeout = errors.New("worker: timed out waiting for compiler to connect")
	ErrExited         = errors.New("worker: compiler exited before connecting")
)

// Config describes one compiler launch.
type Config struct {
	CompilerPath string
	// BasePath is the first argument passed to the compiler. Empty selects
	// DefaultBasePath(CompilerPath).
	BasePath string
	// LogFile is the second argument. Empty disables worker logging.
	LogFile string
	// Channel is the channel name template; IDPlaceholder is substituted.
	Channel        string
	ConnectTimeout time.Duration
	// ExitTimeout bounds how long Close waits for a voluntary exit before
	// killing the process.
	ExitTimeout time.Duration
	// Env is appended to the current environment.
	Env    []string
	Stderr io.Writer
	Logger *zerolog.Logger
}

// DefaultConfig returns launch defaults.
func DefaultConfig() Config {
	return Config{
		Channel:        DefaultChannel,
		ConnectTimeout: 10 * time.Second,
		ExitTimeout:    2 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.Channel) == "" {
		c.Channel = def.Channel
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.ExitTimeout <= 0 {
		c.ExitTimeout = def.ExitTimeout
	}
	if c.BasePath == "" && c.CompilerPath != "" {
		c.BasePath = DefaultBasePath(c.CompilerPath)
	}
	if c.Logger == nil {
		l := log.Logger.With().Str("component", "worker").Logger()
		c.Logger = &l
	}
	return c
}

var launchSeq atomic.Uint64

// ChannelName substitutes IDPlaceholder in template with id.
func ChannelName(template, id string) string {
	return strings.ReplaceAll(template, IDPlaceholder, id)
}

func nextID() string {
	return strconv.Itoa(os.Getpid()) + "-" + strconv.FormatUint(launchSeq.Add(1), 10)
}

// Args returns the compiler command line arguments for addr.
func Args(basePath, logFile, addr string) []string {
	return []string{slashes(basePath), slashes(logFile), addr}
}

func slashes(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// Process is a running compiler connected on its channel.
type Process struct {
	cmd      *exec.Cmd
	conn     net.Conn
	listener net.Listener
	addr     string
	exitTO   time.Duration
	log      zerolog.Logger

	done    chan struct{}
	waitErr error

	closeOnce sync.Once
	closeErr  error
}

// Start listens on a fresh channel, launches the compiler with the channel
// address and waits for it to connect.
func Start(ctx context.Context, cfg Config) (*Process, error) {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.CompilerPath) == "" {
		return nil, ErrNoCompiler
	}
	name := ChannelName(cfg.Channel, nextID())
	ln, addr, err := listen(name)
	if err != nil {
		return nil, fmt.Errorf("worker: listen %q: %w", name, err)
	}

	cmd := exec.Command(cfg.CompilerPath, Args(cfg.BasePath, cfg.LogFile, addr)...)
	cmd.Env = append(os.Environ(), cfg.Env...)
	cmd.Stderr = cfg.Stderr
	if err := cmd.Start(); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("worker: start %q: %w", cfg.CompilerPath, err)
	}

	p := &Process{
		cmd:      cmd,
		listener: ln,
		addr:     addr,
		exitTO:   cfg.ExitTimeout,
		log:      cfg.Logger.With().Int("pid", cmd.Process.Pid).Str("channel", addr).Logger(),
		done:     make(chan struct{}),
	}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	conn, err := p.accept(ctx, cfg.ConnectTimeout)
	if err != nil {
		_ = p.kill()
		_ = ln.Close()
		return nil, err
	}
	p.conn = conn
	p.log.Debug().Str("compiler", cfg.CompilerPath).Msg("compiler connected")
	return p, nil
}

func (p *Process) accept(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	accepted := make(chan result, 1)
	go func() {
		c, err := p.listener.Accept()
		accepted <- result{conn: c, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-accepted:
		if r.err != nil {
			return nil, fmt.Errorf("worker: accept: %w", r.err)
		}
		return r.conn, nil
	case <-p.done:
		return nil, fmt.Errorf("%w: %v", ErrExited, p.waitErr)
	case <-timer.C:
		return nil, fmt.Errorf("%w after %s", ErrConnectTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Conn returns the connected channel stream.
func (p *Process) Conn() net.Conn {
	return p.conn
}

// Addr returns the channel address handed to the compiler.
func (p *Process) Addr() string {
	return p.addr
}

func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Done is closed once the compiler process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Close closes the channel, waits up to ExitTimeout for the compiler to
// exit, kills it otherwise, and releases the listener. Safe to call twice.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		var errs []error
		if p.conn != nil {
			_ = p.conn.Close()
		}
		timer := time.NewTimer(p.exitTO)
		select {
		case <-p.done:
		case <-timer.C:
			p.log.Warn().Dur("timeout", p.exitTO).Msg("compiler did not exit, killing")
			if err := p.kill(); err != nil {
				errs = append(errs, err)
			}
		}
		timer.Stop()
		if err := p.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, fmt.Errorf("worker: close listener: %w", err))
		}
		p.log.Debug().Msg("compiler released")
		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}

// kill terminates the process and waits for it to be reaped.
func (p *Process) kill() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("worker: kill: %w", err)
	}
	<-p.done
	return nil
}

// Dial connects to a channel created by Start. Used by compiler stand-ins.
func Dial(ctx context.Context, addr string) (net.Conn, error) {
	conn, err := dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("worker: dial %q: %w", addr, err)
	}
	return conn, nil
}
