package session

import (
	"context"

	"github.com/danmuck/shaderctl/internal/protocol"
)

// GetPlatforms issues c:getPlatforms and reads the fixed 13-line reply.
func (s *Session) GetPlatforms(ctx context.Context) (protocol.PlatformReport, error) {
	var report protocol.PlatformReport
	err := s.run(ctx, protocol.CommandGetPlatforms, func(ctx context.Context) error {
		if err := s.writeLines(protocol.CommandGetPlatforms); err != nil {
			return err
		}
		for i := range report.Values {
			if err := ctx.Err(); err != nil {
				return err
			}
			l, err := s.readLine(protocol.CommandGetPlatforms)
			if err != nil {
				return err
			}
			v, err := protocol.ParseInt("platform", l)
			if err != nil {
				return err
			}
			report.Values[i] = v
		}
		return nil
	})
	if err != nil {
		return protocol.PlatformReport{}, err
	}
	return report, nil
}
