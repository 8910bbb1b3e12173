package compressor

import (
	"errors"
	"fmt"
)

// Kind classifies a compression failure.
type Kind int

const (
	KindSourceMissing Kind = iota + 1
	KindDecodeFailure
	KindEncodeFailure
)

// Sentinels for errors.Is matching against an *Error.
var (
	ErrSourceMissing = errors.New("source missing")
	ErrDecodeFailure = errors.New("decode failure")
	ErrEncodeFailure = errors.New("encode failure")
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindSourceMissing:
		return "source_missing"
	case KindDecodeFailure:
		return "decode_failure"
	case KindEncodeFailure:
		return "encode_failure"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindSourceMissing:
		return ErrSourceMissing
	case KindDecodeFailure:
		return ErrDecodeFailure
	case KindEncodeFailure:
		return ErrEncodeFailure
	default:
		return nil
	}
}

// Error is returned by Compress. It carries the failing path and the original cause.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		prefix = s.Error()
	}
	return fmt.Sprintf("%s %s: %v", prefix, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
