package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/shaderctl/internal/logging"
	"github.com/danmuck/shaderctl/internal/worker"
)

var ErrInvalid = errors.New("config: invalid")

// Bindings selects the compile-reply record set.
const (
	BindingsStandard = "standard"
	BindingsBasic    = "basic"
)

type Config struct {
	Compiler CompilerConfig
	Session  SessionConfig
	Server   ServerConfig
	Log      LogConfig
}

type CompilerConfig struct {
	Path        string
	BasePath    string
	IncludePath string
	LogFile     string
	Channel     string
	ExitTimeout time.Duration
}

type SessionConfig struct {
	ID              string
	ConnectTimeout  time.Duration
	CommandTimeout  time.Duration
	ShutdownTimeout time.Duration
	Bindings        string
}

type ServerConfig struct {
	Addr        string
	CorsOrigins []string
}

type LogConfig struct {
	Level string
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Compiler: CompilerConfig{
			Channel:     worker.DefaultChannel,
			ExitTimeout: 2 * time.Second,
		},
		Session: SessionConfig{
			ID:              "shaderctl",
			ConnectTimeout:  10 * time.Second,
			CommandTimeout:  60 * time.Second,
			ShutdownTimeout: 2 * time.Second,
			Bindings:        BindingsStandard,
		},
		Server: ServerConfig{
			Addr:        ":9300",
			CorsOrigins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{Level: "info"},
	}
}

type fileConfig struct {
	Compiler struct {
		Path        string `toml:"path"`
		BasePath    string `toml:"base_path"`
		IncludePath string `toml:"include_path"`
		LogFile     string `toml:"log_file"`
		Channel     string `toml:"channel"`
		ExitTimeout string `toml:"exit_timeout"`
	} `toml:"compiler"`
	Session struct {
		ID              string `toml:"id"`
		ConnectTimeout  string `toml:"connect_timeout"`
		CommandTimeout  string `toml:"command_timeout"`
		ShutdownTimeout string `toml:"shutdown_timeout"`
		Bindings        string `toml:"bindings"`
	} `toml:"session"`
	Server struct {
		Addr        string   `toml:"addr"`
		CorsOrigins []string `toml:"cors_origins"`
	} `toml:"server"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// Load reads path, overlays the keys it defines onto Default, resolves the
// compiler install and validates the result.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Resolve(cfg)
}

// LoadFile is Load without Resolve, for callers that override fields first.
func LoadFile(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
	}

	cfg := Default()
	if err := overlay(&cfg, raw, meta); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

func overlay(cfg *Config, raw fileConfig, meta toml.MetaData) error {
	if meta.IsDefined("compiler", "path") {
		cfg.Compiler.Path = strings.TrimSpace(raw.Compiler.Path)
	}
	if meta.IsDefined("compiler", "base_path") {
		cfg.Compiler.BasePath = strings.TrimSpace(raw.Compiler.BasePath)
	}
	if meta.IsDefined("compiler", "include_path") {
		cfg.Compiler.IncludePath = strings.TrimSpace(raw.Compiler.IncludePath)
	}
	if meta.IsDefined("compiler", "log_file") {
		cfg.Compiler.LogFile = strings.TrimSpace(raw.Compiler.LogFile)
	}
	if meta.IsDefined("compiler", "channel") {
		cfg.Compiler.Channel = strings.TrimSpace(raw.Compiler.Channel)
	}

	durations := []struct {
		keys []string
		raw  string
		dst  *time.Duration
	}{
		{[]string{"compiler", "exit_timeout"}, raw.Compiler.ExitTimeout, &cfg.Compiler.ExitTimeout},
		{[]string{"session", "connect_timeout"}, raw.Session.ConnectTimeout, &cfg.Session.ConnectTimeout},
		{[]string{"session", "command_timeout"}, raw.Session.CommandTimeout, &cfg.Session.CommandTimeout},
		{[]string{"session", "shutdown_timeout"}, raw.Session.ShutdownTimeout, &cfg.Session.ShutdownTimeout},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.keys...) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return fmt.Errorf("parse %s: %w", strings.Join(d.keys, "."), err)
		}
		*d.dst = v
	}

	if meta.IsDefined("session", "id") {
		if id := strings.TrimSpace(raw.Session.ID); id != "" {
			cfg.Session.ID = id
		}
	}
	if meta.IsDefined("session", "bindings") {
		cfg.Session.Bindings = strings.ToLower(strings.TrimSpace(raw.Session.Bindings))
	}
	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = normalizeOrigins(raw.Server.CorsOrigins)
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	return nil
}

// Resolve fills the compiler path from the environment or install registry
// when unset, derives base and include paths, then validates.
func Resolve(cfg Config) (Config, error) {
	if cfg.Compiler.Path == "" {
		if p, err := worker.Locate(""); err == nil {
			cfg.Compiler.Path = p
		}
	}
	if cfg.Compiler.Path != "" {
		if cfg.Compiler.BasePath == "" {
			cfg.Compiler.BasePath = worker.DefaultBasePath(cfg.Compiler.Path)
		}
		if cfg.Compiler.IncludePath == "" {
			cfg.Compiler.IncludePath = worker.DefaultIncludePath(cfg.Compiler.BasePath)
		}
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Compiler.Path) == "" {
		return fmt.Errorf("%w: compiler path is required (set [compiler].path or %s)", ErrInvalid, worker.EnvCompiler)
	}
	if strings.TrimSpace(cfg.Compiler.Channel) == "" {
		return fmt.Errorf("%w: compiler channel is required", ErrInvalid)
	}
	if cfg.Session.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: session.connect_timeout must be positive", ErrInvalid)
	}
	if cfg.Session.CommandTimeout < 0 || cfg.Session.ShutdownTimeout < 0 || cfg.Compiler.ExitTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalid)
	}
	switch cfg.Session.Bindings {
	case BindingsStandard, BindingsBasic:
	default:
		return fmt.Errorf("%w: session.bindings %q (want %s or %s)", ErrInvalid, cfg.Session.Bindings, BindingsStandard, BindingsBasic)
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, cfg.Log.Level)
	}
	return nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
