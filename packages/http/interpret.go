package http

import "errors"

var errBodyNotEmpty = errors.New("empty response expected but body is not empty")

// EmptyResponse is the result type of calls that expect no response body.
type EmptyResponse struct{}

type shape int

const (
	shapeDecode shape = iota
	shapeBytes
	shapeEmpty
)

// Expect states which shape the caller wants a successful response in. Use
// Decode, Bytes or Empty to construct one.
type Expect[T any] struct {
	shape  shape
	decode func(Serializer, []byte) (T, error)
}

// Decode deserializes the response body into T.
func Decode[T any]() Expect[T] {
	return Expect[T]{
		shape: shapeDecode,
		decode: func(s Serializer, data []byte) (T, error) {
			var v T
			if err := s.Decode(data, &v); err != nil {
				var zero T
				return zero, err
			}
			return v, nil
		},
	}
}

// Bytes returns the response body unchanged.
func Bytes() Expect[[]byte] {
	return Expect[[]byte]{
		shape: shapeBytes,
		decode: func(_ Serializer, data []byte) ([]byte, error) {
			return data, nil
		},
	}
}

// Empty requires the response body to be empty.
func Empty() Expect[EmptyResponse] {
	return Expect[EmptyResponse]{
		shape: shapeEmpty,
		decode: func(_ Serializer, data []byte) (EmptyResponse, error) {
			if len(data) != 0 {
				return EmptyResponse{}, errBodyNotEmpty
			}
			return EmptyResponse{}, nil
		},
	}
}

// ErrorDecoder decodes a domain error from a rejected response body.
type ErrorDecoder func(Serializer, []byte) (any, error)

// ErrorBody decodes rejected response bodies into E.
func ErrorBody[E any]() ErrorDecoder {
	return func(s Serializer, data []byte) (any, error) {
		var e E
		if err := s.Decode(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Interpret maps a raw response to a typed value or an *Error.
//
// A missing response or an unrecognized status code is treated as a 500
// rejection. Any other non-2xx status is a rejection carrying that status. In
// both cases the body is decoded with errBody on a best-effort basis: a body
// that does not decode leaves Domain nil. A 2xx response is handed to want.
func Interpret[T any](serializer Serializer, resp *Response, want Expect[T], errBody ErrorDecoder) (T, error) {
	var zero T
	if serializer == nil {
		serializer = DefaultSerializer
	}

	var body []byte
	if resp != nil {
		body = resp.Body
	}

	status, ok := StatusInternalServerError, false
	if resp != nil {
		status, ok = ParseStatus(resp.StatusCode)
	}
	if !ok {
		return zero, rejectedError(StatusInternalServerError, decodeDomain(serializer, body, errBody))
	}
	if !status.IsSuccess() {
		return zero, rejectedError(status, decodeDomain(serializer, body, errBody))
	}

	if want.decode == nil {
		want = Decode[T]()
	}
	v, err := want.decode(serializer, body)
	if err != nil {
		return zero, decodingError(err)
	}
	return v, nil
}

func decodeDomain(serializer Serializer, body []byte, errBody ErrorDecoder) any {
	if errBody == nil || len(body) == 0 {
		return nil
	}
	domain, err := errBody(serializer, body)
	if err != nil {
		return nil
	}
	return domain
}

func (s shape) String() string {
	switch s {
	case shapeBytes:
		return "bytes"
	case shapeEmpty:
		return "empty"
	default:
		return "decode"
	}
}
