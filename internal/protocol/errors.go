package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrProtocolViolation = errors.New("protocol: worker output was invalid")
	ErrRecordMalformed   = errors.New("protocol: record malformed")
	ErrUnknownEnumerant  = errors.New("protocol: unknown enumerant")
	ErrChannelIO         = errors.New("protocol: channel i/o failure")
	ErrDisposed          = errors.New("protocol: session disposed")
	ErrInvalidRequest    = errors.New("protocol: request cannot be framed")
)

// RecordError reports a record whose token count does not fit its grammar.
// It matches both ErrRecordMalformed and ErrProtocolViolation.
type RecordError struct {
	Tag   string
	Want  int
	Got   int
	Exact bool
}

func (e *RecordError) Error() string {
	if e.Exact {
		return fmt.Sprintf("protocol: %q record has %d tokens, need exactly %d", e.Tag, e.Got, e.Want)
	}
	return fmt.Sprintf("protocol: %q record has %d tokens, need at least %d", e.Tag, e.Got, e.Want)
}

func (e *RecordError) Unwrap() []error {
	return []error{ErrRecordMalformed, ErrProtocolViolation}
}

// TruncatedError reports end of stream in the middle of a reply. The reply is
// shorter than its grammar and the stream is gone, so it matches both
// ErrProtocolViolation and ErrChannelIO.
type TruncatedError struct {
	Command string
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("protocol: %s reply truncated by end of stream", e.Command)
}

func (e *TruncatedError) Unwrap() []error {
	return []error{ErrProtocolViolation, ErrChannelIO}
}

// Violationf wraps ErrProtocolViolation with a formatted detail.
func Violationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProtocolViolation, fmt.Sprintf(format, args...))
}

// RequireTokens fails with a RecordError when tokens is shorter than want.
func RequireTokens(tokens []string, want int) error {
	if len(tokens) >= want {
		return nil
	}
	tag := ""
	if len(tokens) > 0 {
		tag = tokens[0]
	}
	return &RecordError{Tag: tag, Want: want, Got: len(tokens)}
}

// RequireExactTokens fails with a RecordError unless tokens has exactly want
// entries.
func RequireExactTokens(tokens []string, want int) error {
	if len(tokens) == want {
		return nil
	}
	tag := ""
	if len(tokens) > 0 {
		tag = tokens[0]
	}
	return &RecordError{Tag: tag, Want: want, Got: len(tokens), Exact: true}
}
