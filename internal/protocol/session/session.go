package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danmuck/shaderctl/internal/protocol"
	"github.com/danmuck/shaderctl/internal/protocol/line"
	"github.com/rs/zerolog"
)

// Session owns one channel to one worker.
type Session struct {
	ch     *line.Channel
	worker io.Closer
	cfg    Config
	log    zerolog.Logger
	stats  *CommandStats
}

// New wraps stream in a Session. worker, when non-nil, is closed after the
// channel during Close (typically the worker process handle).
func New(stream io.ReadWriter, worker io.Closer, cfg Config) *Session {
	cfg = cfg.WithDefaults()
	return &Session{
		ch:     line.New(stream),
		worker: worker,
		cfg:    cfg,
		log:    *cfg.Logger,
		stats:  newCommandStats(),
	}
}

func (s *Session) ID() string {
	return s.cfg.ID
}

func (s *Session) IncludePath() string {
	return s.cfg.IncludePath
}

// Disposed reports whether Close has run.
func (s *Session) Disposed() bool {
	return s.ch.Closed()
}

// Alive reports whether the channel can still carry a command.
func (s *Session) Alive() bool {
	return s.ch.Alive()
}

// Close asks the worker to exit, closes the channel, then the worker handle.
// The shutdown line is only sent while the channel is alive; a second Close
// does nothing.
func (s *Session) Close() error {
	if s.ch.Closed() {
		return nil
	}
	var errs []error
	if s.ch.Alive() {
		if s.ch.SupportsDeadline() {
			_ = s.ch.SetDeadline(time.Now().Add(s.cfg.ShutdownTimeout))
		}
		if err := s.ch.WriteLine(protocol.ShutdownLine); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.ch.Close(); err != nil {
		errs = append(errs, fmt.Errorf("%w: close: %w", protocol.ErrChannelIO, err))
	}
	if s.worker != nil {
		if err := s.worker.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.log.Debug().Msg("session closed")
	return errors.Join(errs...)
}

// run executes one command under hooks, deadline and logging.
func (s *Session) run(ctx context.Context, command string, fn func(ctx context.Context) error) error {
	if s.Disposed() {
		return fmt.Errorf("%w: %s", protocol.ErrDisposed, command)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	info := CommandInfo{Command: command, SessionID: s.cfg.ID}
	s.stats = newCommandStats()
	tokens := make([]HookToken, len(s.cfg.Hooks))
	for i, h := range s.cfg.Hooks {
		ctx, tokens[i] = h.OnCommandStart(ctx, info)
	}

	start := time.Now()
	disarm := s.armDeadline(ctx)
	err := fn(ctx)
	disarm()
	if err != nil && ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		err = fmt.Errorf("%w (%w)", err, ctx.Err())
	}

	for i := len(s.cfg.Hooks) - 1; i >= 0; i-- {
		s.cfg.Hooks[i].OnCommandEnd(ctx, tokens[i], info, s.stats, err)
	}

	event := s.log.Debug()
	if err != nil {
		event = s.log.Warn().Err(err)
	}
	event.
		Str("command", command).
		Int64("lines_out", s.stats.LinesWritten).
		Int64("lines_in", s.stats.LinesRead).
		Int64("dropped", s.stats.Dropped).
		Dur("duration", time.Since(start)).
		Msg("command finished")
	return err
}

// armDeadline pushes the effective deadline to the channel and makes context
// cancellation interrupt a blocked read. The returned func clears both.
func (s *Session) armDeadline(ctx context.Context) func() {
	if !s.ch.SupportsDeadline() {
		return func() {}
	}
	var deadline time.Time
	if s.cfg.CommandTimeout > 0 {
		deadline = time.Now().Add(s.cfg.CommandTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	_ = s.ch.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() {
		_ = s.ch.SetDeadline(time.Now())
	})
	return func() {
		stop()
		_ = s.ch.SetDeadline(time.Time{})
	}
}

// writeLines sends one request. Every line is checked before the first write
// so a request that cannot be framed leaves the worker untouched.
func (s *Session) writeLines(lines ...string) error {
	for i, l := range lines {
		if strings.ContainsRune(l, '\n') {
			return fmt.Errorf("%w: line %d of %s: %w", protocol.ErrInvalidRequest, i, lines[0], line.ErrEmbeddedNewline)
		}
	}
	for _, l := range lines {
		if err := s.ch.WriteLine(l); err != nil {
			return err
		}
		s.stats.recordWrite(len(l))
	}
	return nil
}

// readLine reads one reply line for command. End of stream mid-reply is
// reported as a TruncatedError rather than an endless run of blank lines.
func (s *Session) readLine(command string) (string, error) {
	l, err := s.ch.ReadLine()
	if err != nil {
		return "", err
	}
	if l == "" && s.ch.EOF() {
		return "", &protocol.TruncatedError{Command: command}
	}
	s.stats.recordRead(len(l))
	return l, nil
}

// readRecord reads and tokenises one reply line, checking ctx between records.
func (s *Session) readRecord(ctx context.Context, command string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l, err := s.readLine(command)
	if err != nil {
		return nil, err
	}
	return protocol.SplitRecord(l), nil
}

// readError decodes an err: record and its two payload lines.
func (s *Session) readError(command string, tokens []string) (protocol.Error, error) {
	if err := protocol.RequireExactTokens(tokens, 4); err != nil {
		return protocol.Error{}, err
	}
	var v [3]int32
	if err := protocol.ParseInts("err", tokens, 1, v[:]); err != nil {
		return protocol.Error{}, err
	}
	file, err := s.readLine(command)
	if err != nil {
		return protocol.Error{}, err
	}
	msg, err := s.readLine(command)
	if err != nil {
		return protocol.Error{}, err
	}
	return protocol.Error{
		Level:    protocol.ErrorLevel(v[0]),
		Platform: protocol.Platform(v[1]),
		Line:     v[2],
		File:     file,
		Message:  msg,
	}, nil
}

func (s *Session) ignore(command string, tokens []string) {
	if tokens[0] == "" {
		return
	}
	s.log.Trace().Str("command", command).Str("tag", tokens[0]).Msg("ignored record")
}
