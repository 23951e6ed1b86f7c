package http

import (
	"errors"
	"fmt"
)

// Kind classifies a networking failure.
type Kind int

const (
	// KindUnknown covers transport failures and any cause no other kind claims.
	KindUnknown Kind = iota
	// KindBuildingURL means the URL or its query could not be composed.
	KindBuildingURL
	// KindEncoding means the request body could not be serialized.
	KindEncoding
	// KindDecoding means the response body did not match the requested shape.
	KindDecoding
	// KindRejected means the server answered with a non-success status.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindBuildingURL:
		return "building url"
	case KindEncoding:
		return "encoding"
	case KindDecoding:
		return "decoding"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by a call. Every failure is mapped to
// exactly one Kind before it reaches middleware or the caller.
type Error struct {
	Kind Kind
	// Status is set for KindRejected.
	Status Status
	// Domain holds the decoded error body for KindRejected, or nil when the body
	// was absent or did not decode.
	Domain any
	Cause  error
}

// Sentinels for errors.Is comparisons by kind.
var (
	ErrBuildingURL = &Error{Kind: KindBuildingURL}
	ErrEncoding    = &Error{Kind: KindEncoding}
	ErrDecoding    = &Error{Kind: KindDecoding}
	ErrRejected    = &Error{Kind: KindRejected}
	ErrUnknown     = &Error{Kind: KindUnknown}
)

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "netrequester: " + e.Kind.String()
	if e.Kind == KindRejected {
		msg = fmt.Sprintf("%s: status %s", msg, e.Status)
		if e.Domain != nil {
			msg = fmt.Sprintf("%s: %v", msg, e.Domain)
		}
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *Error of the same kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var t *Error
	if errors.As(target, &t) && t != nil {
		return e.Kind == t.Kind
	}
	return false
}

// AsError extracts the *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// DomainError returns the decoded error body of a rejected call when it has
// type E.
func DomainError[E any](err error) (E, bool) {
	var zero E
	e, ok := AsError(err)
	if !ok || e.Domain == nil {
		return zero, false
	}
	switch d := e.Domain.(type) {
	case E:
		return d, true
	case *E:
		if d != nil {
			return *d, true
		}
	}
	return zero, false
}

func buildingURLError(cause error) *Error {
	return &Error{Kind: KindBuildingURL, Cause: cause}
}

func encodingError(cause error) *Error {
	return &Error{Kind: KindEncoding, Cause: cause}
}

func decodingError(cause error) *Error {
	return &Error{Kind: KindDecoding, Cause: cause}
}

func rejectedError(status Status, domain any) *Error {
	return &Error{Kind: KindRejected, Status: status, Domain: domain}
}

// mapError converts any failure into an *Error. Errors that already carry a
// kind pass through unchanged.
func mapError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := AsError(err); ok {
		return e
	}
	return &Error{Kind: KindUnknown, Cause: err}
}
