package locktime

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimelock is returned when a lock time value lies outside
	// of the range of the requested lock kind.
	ErrInvalidTimelock = errors.New("invalid timelock value")
)

// ParseErrorKind tells which part of a lock time text failed to parse.
type ParseErrorKind uint8

const (
	// InvalidDescriptor means the text isn't of any known lock time form.
	InvalidDescriptor ParseErrorKind = iota

	// InvalidTimestamp means the text is a "time(N)" with N below the
	// timestamp threshold.
	InvalidTimestamp

	// InvalidHeight means the text is a "height(N)" with N at or above
	// the timestamp threshold.
	InvalidHeight

	// InvalidInteger means the number inside the parentheses isn't a
	// valid 32-bit unsigned integer.
	InvalidInteger
)

// String returns a human readable name for the kind.
func (k ParseErrorKind) String() string {
	switch k {
	case InvalidDescriptor:
		return "invalid lock time descriptor"

	case InvalidTimestamp:
		return "invalid lock timestamp"

	case InvalidHeight:
		return "invalid lock height"

	case InvalidInteger:
		return "invalid lock time integer"

	default:
		return fmt.Sprintf("ParseErrorKind(%d)", uint8(k))
	}
}

// ParseError is returned when the text form of a lock time can't be parsed.
type ParseError struct {
	// Kind is the reason parsing failed.
	Kind ParseErrorKind

	// Input is the text that was parsed.
	Input string

	// Value is the number found in the text, for InvalidTimestamp and
	// InvalidHeight.
	Value uint32

	// Err is the underlying error, if any.
	Err error
}

// Error returns the error message.
func (e *ParseError) Error() string {
	switch e.Kind {
	case InvalidTimestamp, InvalidHeight:
		return fmt.Sprintf("%v %d", e.Kind, e.Value)

	case InvalidInteger:
		return fmt.Sprintf("%v in %q: %v", e.Kind, e.Input, e.Err)

	default:
		return fmt.Sprintf("%v %q", e.Kind, e.Input)
	}
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
