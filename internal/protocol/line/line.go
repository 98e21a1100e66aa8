// Package line frames a byte stream into newline-terminated records.
package line

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danmuck/shaderctl/internal/protocol"
)

// BlockSize is the step by which the receive buffer grows.
const BlockSize = 4096

const terminator = '\n'

var (
	ErrEmbeddedNewline = errors.New("line: payload contains a newline")
	ErrClosed          = errors.New("line: channel closed")
)

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Channel reads and writes single lines over a bidirectional byte stream.
// A Channel is not safe for concurrent use.
type Channel struct {
	rw     io.ReadWriter
	br     *bufio.Reader
	recv   []byte
	send   []byte
	eof    bool
	closed bool
	failed error
}

func New(rw io.ReadWriter) *Channel {
	return &Channel{
		rw:   rw,
		br:   bufio.NewReaderSize(rw, BlockSize),
		recv: make([]byte, 0, BlockSize),
		send: make([]byte, 0, BlockSize),
	}
}

// ReadLine blocks until a '\n' or end of stream. The terminator is not returned.
// End of stream before any byte yields "" and a nil error.
func (c *Channel) ReadLine() (string, error) {
	if c.closed {
		return "", fmt.Errorf("%w: %w", protocol.ErrChannelIO, ErrClosed)
	}
	c.recv = c.recv[:0]
	for {
		chunk, err := c.br.ReadSlice(terminator)
		if n := len(chunk); n > 0 && chunk[n-1] == terminator {
			chunk = chunk[:n-1]
		}
		if len(chunk) > 0 {
			c.grow(len(c.recv) + len(chunk))
			c.recv = append(c.recv, chunk...)
		}
		switch {
		case err == nil:
			return string(c.recv), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			c.eof = true
			return string(c.recv), nil
		default:
			c.failed = err
			return "", fmt.Errorf("%w: read: %w", protocol.ErrChannelIO, err)
		}
	}
}

// WriteLine writes s followed by '\n' in a single write.
func (c *Channel) WriteLine(s string) error {
	if c.closed {
		return fmt.Errorf("%w: %w", protocol.ErrChannelIO, ErrClosed)
	}
	if strings.IndexByte(s, terminator) >= 0 {
		return ErrEmbeddedNewline
	}
	c.send = c.send[:0]
	if need := len(s) + 1; cap(c.send) < need {
		c.send = make([]byte, 0, blocksFor(need))
	}
	c.send = append(c.send, s...)
	c.send = append(c.send, terminator)
	if _, err := c.rw.Write(c.send); err != nil {
		c.failed = err
		return fmt.Errorf("%w: write: %w", protocol.ErrChannelIO, err)
	}
	return nil
}

// Alive reports whether the stream can still carry a request/response cycle:
// not closed, no end of stream observed, no I/O failure.
func (c *Channel) Alive() bool {
	return !c.closed && !c.eof && c.failed == nil
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	return c.closed
}

// EOF reports whether end of stream has been observed.
func (c *Channel) EOF() bool {
	return c.eof
}

// SetDeadline forwards to the underlying stream when it supports deadlines.
func (c *Channel) SetDeadline(t time.Time) error {
	if d, ok := c.rw.(deadliner); ok {
		return d.SetDeadline(t)
	}
	return nil
}

// SupportsDeadline reports whether SetDeadline has any effect.
func (c *Channel) SupportsDeadline() bool {
	_, ok := c.rw.(deadliner)
	return ok
}

// Close closes the underlying stream when it is an io.Closer. Safe to call twice.
func (c *Channel) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if cl, ok := c.rw.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

func (c *Channel) grow(need int) {
	if cap(c.recv) >= need {
		return
	}
	next := make([]byte, len(c.recv), blocksFor(need))
	copy(next, c.recv)
	c.recv = next
}

func blocksFor(n int) int {
	return (n/BlockSize + 1) * BlockSize
}
