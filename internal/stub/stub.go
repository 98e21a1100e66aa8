// Package stub is a stand-in compiler that only answers c:getPlatforms.
package stub

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/shaderctl/internal/protocol"
	"github.com/danmuck/shaderctl/internal/protocol/line"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PlatformValues is the canned c:getPlatforms reply.
var PlatformValues = [protocol.PlatformReportSize]int32{-3085, 0, 0, 1, 0, 2, 8, 1, 1, 2, 10, 0, 0}

// Serve answers requests on rw until the shutdown line, end of stream, or
// ctx cancellation. Requests other than c:getPlatforms are ignored.
func Serve(ctx context.Context, rw io.ReadWriter) error {
	return ServeWithLogger(ctx, rw, log.Logger.With().Str("component", "stub").Logger())
}

func ServeWithLogger(ctx context.Context, rw io.ReadWriter, logger zerolog.Logger) error {
	ch := line.New(rw)
	if ch.SupportsDeadline() {
		stop := context.AfterFunc(ctx, func() {
			_ = ch.SetDeadline(time.Now())
		})
		defer stop()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l, err := ch.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if l == protocol.ShutdownLine {
			if ch.EOF() {
				logger.Debug().Msg("caller closed channel")
			} else {
				logger.Debug().Msg("shutdown requested")
			}
			return nil
		}
		if !strings.HasPrefix(l, protocol.CommandGetPlatforms) {
			logger.Debug().Str("line", l).Msg("ignored request")
			continue
		}
		for _, v := range PlatformValues {
			if err := ch.WriteLine(strconv.Itoa(int(v))); err != nil {
				return err
			}
		}
		logger.Debug().Msg("answered getPlatforms")
	}
}
