// Package server exposes one worker session over HTTP. Requests are
// serialised onto the session; the worker protocol is half-duplex.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/shaderctl/internal/observability"
	"github.com/danmuck/shaderctl/internal/protocol"
	"github.com/danmuck/shaderctl/internal/protocol/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const Version = "0.1.0"

// Compiler is the session surface the server drives.
type Compiler interface {
	GetPlatforms(ctx context.Context) (protocol.PlatformReport, error)
	Preprocess(ctx context.Context, req session.PreprocessRequest) (protocol.PreprocessResult, error)
	CompileSnippet(ctx context.Context, req session.CompileRequest) (session.CompileResult, error)
	CompileAll(ctx context.Context, pre protocol.PreprocessResult, platform protocol.Platform) ([]session.SnipCompilation, error)
	Disposed() bool
	Close() error
}

type Server struct {
	ID       string
	Addr     string
	Appeared time.Time

	mu       sync.Mutex
	compiler Compiler
	router   *gin.Engine
	log      zerolog.Logger
}

// New builds the router for compiler. The caller keeps ownership of the
// session and closes it after the server stops.
func New(id, addr string, compiler Compiler, corsOrigins []string) *Server {
	observability.RegisterMetrics()
	logger := log.Logger.With().Str("component", "server").Str("service", id).Logger()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetricsMiddleware(id))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		ID:       id,
		Addr:     addr,
		Appeared: time.Now(),
		compiler: compiler,
		router:   r,
		log:      logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// withCompiler runs fn while holding the session. A command that fails after
// reaching the worker may leave part of its reply in the stream, so the
// session is closed and later requests get ErrDisposed.
func (s *Server) withCompiler(fn func(Compiler) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.compiler.Disposed() {
		return protocol.ErrDisposed
	}
	err := fn(s.compiler)
	if desynced(err) {
		s.log.Error().Err(err).Msg("worker stream out of sync; closing session")
		if cerr := s.compiler.Close(); cerr != nil {
			s.log.Warn().Err(cerr).Msg("close session")
		}
	}
	return err
}

func desynced(err error) bool {
	return errors.Is(err, protocol.ErrProtocolViolation) || errors.Is(err, protocol.ErrChannelIO)
}

func (s *Server) ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.compiler.Disposed()
}

// statusFor maps command errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, protocol.ErrDisposed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, session.ErrConfigurationIndex), errors.Is(err, protocol.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, protocol.ErrProtocolViolation), errors.Is(err, protocol.ErrChannelIO):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return []string{"http://localhost:3000"}
	}
	return out
}
