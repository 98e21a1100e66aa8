// Package relay forwards the line protocol between a caller and a compiler
// without interpreting it, recording each line as it passes.
package relay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Direction names which way a line travelled.
type Direction string

const (
	ToWorker Direction = "caller->worker"
	ToCaller Direction = "worker->caller"
)

var errStreamEnded = errors.New("relay: stream ended")

// Options configures a relay run.
type Options struct {
	Logger *zerolog.Logger
	// Transcript, when set, receives every forwarded line prefixed with its
	// direction marker ("> " toward the worker, "< " toward the caller).
	Transcript io.Writer
}

// Stats counts forwarded lines per direction.
type Stats struct {
	ToWorker int64
	ToCaller int64
}

// Relay pumps lines between two streams.
type Relay struct {
	log        zerolog.Logger
	transcript io.Writer
	mu         sync.Mutex
	toWorker   atomic.Int64
	toCaller   atomic.Int64
}

func New(opts Options) *Relay {
	l := log.Logger.With().Str("component", "relay").Logger()
	if opts.Logger != nil {
		l = *opts.Logger
	}
	return &Relay{log: l, transcript: opts.Transcript}
}

// Run forwards caller->worker and worker->caller until either side ends or
// ctx is cancelled, then closes both streams. End of stream is not an error.
func (r *Relay) Run(ctx context.Context, caller, worker io.ReadWriteCloser) (Stats, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.pump(caller, worker, ToWorker, &r.toWorker) })
	g.Go(func() error { return r.pump(worker, caller, ToCaller, &r.toCaller) })
	g.Go(func() error {
		<-gctx.Done()
		_ = caller.Close()
		_ = worker.Close()
		return nil
	})

	err := g.Wait()
	stats := r.Stats()
	if ctx.Err() != nil {
		return stats, ctx.Err()
	}
	if errors.Is(err, errStreamEnded) {
		err = nil
	}
	r.log.Debug().Int64("to_worker", stats.ToWorker).Int64("to_caller", stats.ToCaller).Msg("relay finished")
	return stats, err
}

func (r *Relay) Stats() Stats {
	return Stats{ToWorker: r.toWorker.Load(), ToCaller: r.toCaller.Load()}
}

func (r *Relay) pump(src io.Reader, dst io.Writer, dir Direction, count *atomic.Int64) error {
	br := bufio.NewReader(src)
	for {
		chunk, err := br.ReadBytes('\n')
		if len(chunk) > 0 {
			if _, werr := dst.Write(chunk); werr != nil {
				return fmt.Errorf("relay: %s write: %w", dir, werr)
			}
			count.Add(1)
			r.record(dir, chunk)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.log.Debug().Str("direction", string(dir)).Msg("stream ended")
				return errStreamEnded
			}
			return fmt.Errorf("relay: %s read: %w", dir, err)
		}
	}
}

func (r *Relay) record(dir Direction, chunk []byte) {
	text := strings.TrimSuffix(string(chunk), "\n")
	r.log.Debug().Str("direction", string(dir)).Str("line", text).Msg("forward")
	if r.transcript == nil {
		return
	}
	marker := "> "
	if dir == ToCaller {
		marker = "< "
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.transcript, marker+text+"\n")
}
