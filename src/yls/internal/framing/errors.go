package framing

import "fmt"

// ErrorKind classifies a failure to read a frame off the stream.
type ErrorKind int

const (
	// MissingLength indicates that the header block ended without a Content-Length header.
	MissingLength ErrorKind = iota + 1
	// InvalidLength indicates that the Content-Length value is not a usable byte count.
	InvalidLength
	// TruncatedBody indicates that the stream ended before the declared number of body bytes arrived.
	TruncatedBody
	// MalformedHeader indicates a header line that is not in "Name: value" form.
	MalformedHeader
)

func (k ErrorKind) String() string {
	switch k {
	case MissingLength:
		return "MissingLength"
	case InvalidLength:
		return "InvalidLength"
	case TruncatedBody:
		return "TruncatedBody"
	case MalformedHeader:
		return "MalformedHeader"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned when a frame cannot be read. The framing state of the stream is unreliable after any Error.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

var (
	// ErrMissingLength matches any Error of kind MissingLength via errors.Is.
	ErrMissingLength = &Error{Kind: MissingLength}
	// ErrInvalidLength matches any Error of kind InvalidLength via errors.Is.
	ErrInvalidLength = &Error{Kind: InvalidLength}
	// ErrTruncatedBody matches any Error of kind TruncatedBody via errors.Is.
	ErrTruncatedBody = &Error{Kind: TruncatedBody}
	// ErrMalformedHeader matches any Error of kind MalformedHeader via errors.Is.
	ErrMalformedHeader = &Error{Kind: MalformedHeader}
)

// Error is an implementation of the error interface.
func (e *Error) Error() string {
	msg := "framing error: " + e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying I/O error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
