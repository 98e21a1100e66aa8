package session

import (
	"strings"
	"time"

	"github.com/danmuck/shaderctl/internal/protocol/binding"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config defines session behaviour.
type Config struct {
	// ID labels log lines and hook callbacks.
	ID string
	// IncludePath is the standard include directory passed with every request.
	IncludePath string
	// CommandTimeout bounds one request/response cycle when the stream
	// supports deadlines. Zero means no bound beyond the caller's context.
	CommandTimeout time.Duration
	// ShutdownTimeout bounds the shutdown line write during Close.
	ShutdownTimeout time.Duration
	// Registry decodes compile-reply records. Nil selects binding.Standard().
	Registry *binding.Registry
	Logger   *zerolog.Logger
	Hooks    []Hook
}

// DefaultConfig returns session defaults.
func DefaultConfig() Config {
	return Config{
		ID:              "session",
		CommandTimeout:  0,
		ShutdownTimeout: 2 * time.Second,
	}
}

// WithDefaults fills zero fields and normalises the include path.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.ID) == "" {
		c.ID = def.ID
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.CommandTimeout < 0 {
		c.CommandTimeout = 0
	}
	if c.Registry == nil {
		c.Registry = binding.Standard()
	}
	if c.Logger == nil {
		l := log.Logger.With().Str("component", "session").Str("session", c.ID).Logger()
		c.Logger = &l
	}
	c.IncludePath = NormalizeIncludePath(c.IncludePath)
	return c
}

// NormalizeIncludePath converts backslashes to forward slashes, as the worker expects.
func NormalizeIncludePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
