package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/danmuck/shaderctl/internal/config"
	"github.com/danmuck/shaderctl/internal/observability"
	"github.com/danmuck/shaderctl/internal/protocol/session"
	"github.com/danmuck/shaderctl/internal/worker"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// loadConfig applies --config and --compiler and configures logging.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		if cfg, err = config.LoadFile(flagConfig); err != nil {
			return config.Config{}, err
		}
	}
	if p := strings.TrimSpace(flagCompiler); p != "" {
		cfg.Compiler.Path = p
	}
	cfg, err := config.Resolve(cfg)
	if err != nil {
		return config.Config{}, err
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	observability.InitLogger("shaderctl", level)
	return cfg, nil
}

// commandContext is cancelled on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

// compilerSession launches the worker and wraps it in a session. The returned
// cleanup closes the session and flushes traces.
func compilerSession(ctx context.Context, cfg config.Config, hooks ...session.Hook) (*session.Session, func(), error) {
	var tp *sdktrace.TracerProvider
	if flagTrace {
		var err error
		tp, err = observability.NewStdoutTracerProvider(os.Stderr)
		if err != nil {
			return nil, nil, err
		}
		hooks = append(hooks, observability.NewTracingHook(tp))
	}

	proc, err := worker.Start(ctx, cfg.WorkerConfig())
	if err != nil {
		if tp != nil {
			_ = tp.Shutdown(context.Background())
		}
		return nil, nil, err
	}
	scfg := cfg.SessionConfig()
	scfg.Hooks = hooks
	s := session.New(proc.Conn(), proc, scfg)

	cleanup := func() {
		if err := s.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "shaderctl: close: %v\n", err)
		}
		if tp != nil {
			_ = tp.Shutdown(context.Background())
		}
	}
	return s, cleanup, nil
}
