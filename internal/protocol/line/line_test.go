package line

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/shaderctl/internal/protocol"
	"github.com/danmuck/shaderctl/internal/testutil/testlog"
)

type rw struct {
	in  io.Reader
	out bytes.Buffer
}

func (s *rw) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s *rw) Write(p []byte) (int, error) { return s.out.Write(p) }

func newRW(in string) *rw {
	return &rw{in: strings.NewReader(in)}
}

func TestReadLineStripsTerminator(t *testing.T) {
	testlog.Start(t)
	c := New(newRW("first\nsecond\n\nlast"))
	want := []string{"first", "second", "", "last", "", ""}
	for i, w := range want {
		got, err := c.ReadLine()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("read %d: got=%q want=%q", i, got, w)
		}
	}
	if !c.EOF() || c.Alive() {
		t.Fatalf("expected eof observed and channel not alive")
	}
}

func TestReadLineCRIsPayload(t *testing.T) {
	testlog.Start(t)
	c := New(newRW("a\r\n"))
	got, err := c.ReadLine()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "a\r" {
		t.Fatalf("got=%q", got)
	}
}

func TestReadLineLongerThanBlock(t *testing.T) {
	testlog.Start(t)
	long := strings.Repeat("x", 3*BlockSize+17)
	c := New(newRW(long + "\nnext\n"))
	got, err := c.ReadLine()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != long {
		t.Fatalf("long line mismatch: len=%d", len(got))
	}
	if cap(c.recv)%BlockSize != 0 {
		t.Fatalf("receive buffer not grown in blocks: cap=%d", cap(c.recv))
	}
	if got, _ := c.ReadLine(); got != "next" {
		t.Fatalf("got=%q", got)
	}
}

func TestWriteLineAppendsTerminator(t *testing.T) {
	testlog.Start(t)
	s := newRW("")
	c := New(s)
	for _, l := range []string{"c:getPlatforms", "", strings.Repeat("y", BlockSize)} {
		if err := c.WriteLine(l); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	want := "c:getPlatforms\n\n" + strings.Repeat("y", BlockSize) + "\n"
	if s.out.String() != want {
		t.Fatalf("unexpected stream contents (len=%d)", s.out.Len())
	}
}

func TestWriteLineRejectsEmbeddedNewline(t *testing.T) {
	testlog.Start(t)
	s := newRW("")
	c := New(s)
	if err := c.WriteLine("a\nb"); !errors.Is(err, ErrEmbeddedNewline) {
		t.Fatalf("expected ErrEmbeddedNewline, got %v", err)
	}
	if s.out.Len() != 0 {
		t.Fatalf("nothing should be written")
	}
}

func TestCloseIsIdempotentAndFailsIO(t *testing.T) {
	testlog.Start(t)
	a, b := net.Pipe()
	defer b.Close()
	c := New(a)
	if !c.Alive() {
		t.Fatalf("fresh channel should be alive")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if c.Alive() {
		t.Fatalf("closed channel reported alive")
	}
	if _, err := c.ReadLine(); !errors.Is(err, protocol.ErrChannelIO) {
		t.Fatalf("expected ErrChannelIO, got %v", err)
	}
	if err := c.WriteLine("x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestDeadlineUnblocksRead(t *testing.T) {
	testlog.Start(t)
	a, b := net.Pipe()
	defer b.Close()
	c := New(a)
	if !c.SupportsDeadline() {
		t.Fatalf("net.Pipe supports deadlines")
	}
	if err := c.SetDeadline(time.Now().Add(20 * time.Millisecond)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	_, err := c.ReadLine()
	if !errors.Is(err, protocol.ErrChannelIO) {
		t.Fatalf("expected ErrChannelIO on timeout, got %v", err)
	}
	var ne net.Error
	if !errors.As(err, &ne) || !ne.Timeout() {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if c.Alive() {
		t.Fatalf("failed channel reported alive")
	}
}

func TestSetDeadlineNoopWithoutSupport(t *testing.T) {
	testlog.Start(t)
	c := New(newRW(""))
	if c.SupportsDeadline() {
		t.Fatalf("plain reader should not support deadlines")
	}
	if err := c.SetDeadline(time.Now()); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
}
