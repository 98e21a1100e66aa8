package config

import (
	"github.com/danmuck/shaderctl/internal/protocol/binding"
	"github.com/danmuck/shaderctl/internal/protocol/session"
	"github.com/danmuck/shaderctl/internal/worker"
)

// WorkerConfig maps the [compiler] and [session] sections onto a launch config.
func (c Config) WorkerConfig() worker.Config {
	return worker.Config{
		CompilerPath:   c.Compiler.Path,
		BasePath:       c.Compiler.BasePath,
		LogFile:        c.Compiler.LogFile,
		Channel:        c.Compiler.Channel,
		ConnectTimeout: c.Session.ConnectTimeout,
		ExitTimeout:    c.Compiler.ExitTimeout,
	}
}

// SessionConfig maps the [session] section onto a session config. Hooks and
// logger are left for the caller.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		ID:              c.Session.ID,
		IncludePath:     c.Compiler.IncludePath,
		CommandTimeout:  c.Session.CommandTimeout,
		ShutdownTimeout: c.Session.ShutdownTimeout,
		Registry:        Registry(c.Session.Bindings),
	}
}

// Registry returns the binding registry for a [session].bindings value.
func Registry(kind string) *binding.Registry {
	if kind == BindingsBasic {
		return binding.New(binding.BasicKinds()...)
	}
	return binding.Standard()
}
