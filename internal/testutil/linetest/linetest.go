// Package linetest provides scripted worker streams for protocol tests.
package linetest

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// Conn is an in-memory stream: reads come from a fixed reply script, writes
// are captured. It stands in for a worker whose reply is known in advance,
// which is enough for the half-duplex protocol.
type Conn struct {
	mu      sync.Mutex
	reply   *strings.Reader
	written bytes.Buffer
	closed  int
}

// NewConn returns a Conn whose reads yield the given reply lines, each
// terminated by '\n'.
func NewConn(lines ...string) *Conn {
	return NewRawConn(Lines(lines...))
}

// NewRawConn returns a Conn whose reads yield raw exactly.
func NewRawConn(raw string) *Conn {
	return &Conn{reply: strings.NewReader(raw)}
}

// Lines joins lines with '\n' terminators.
func Lines(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed > 0 {
		return 0, io.ErrClosedPipe
	}
	return c.reply.Read(p)
}

func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed > 0 {
		return 0, io.ErrClosedPipe
	}
	return c.written.Write(p)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

// Written returns everything written so far.
func (c *Conn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written.String()
}

// WrittenLines splits Written on '\n', dropping the final empty element.
func (c *Conn) WrittenLines() []string {
	w := c.Written()
	if w == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(w, "\n"), "\n")
}

// CloseCount reports how many times Close was called.
func (c *Conn) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Closer counts Close calls; used as a fake worker handle.
type Closer struct {
	mu    sync.Mutex
	count int
}

func (c *Closer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return nil
}

func (c *Closer) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
