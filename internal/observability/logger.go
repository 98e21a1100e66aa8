package observability

import (
	"github.com/danmuck/shaderctl/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the runtime logging profile at level (environment
// overrides still win) and tags the global logger with app.
func InitLogger(app, level string) zerolog.Logger {
	logging.ConfigureLevel(logging.ProfileRuntime, level)
	logger := log.Logger.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
