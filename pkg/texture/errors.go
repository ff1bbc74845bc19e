package texture

import (
	"errors"
	"fmt"
)

// DecodeError reports a malformed, truncated or unsupported container.
type DecodeError struct {
	Reason string
	Err    error // underlying cause, e.g. a corrupt deflate stream
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decodef builds a DecodeError with a formatted reason.
func Decodef(format string, args ...any) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedFormatError reports a pixel format code with no mapping.
type UnsupportedFormatError struct {
	Kind  string // which code space the value came from
	Value string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported %s %s", e.Kind, e.Value)
}

// IsDecodeError reports whether err wraps a DecodeError.
func IsDecodeError(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// IsUnsupportedFormat reports whether err wraps an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}
