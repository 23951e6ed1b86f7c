package http

import "bytes"

// Body produces request payload bytes on demand. Building a Body never fails;
// serialization errors surface from Data.
type Body struct {
	data func() ([]byte, error)
}

// NewBody serializes value with serializer each time Data is called.
func NewBody(value any, serializer Serializer) Body {
	if serializer == nil {
		serializer = DefaultSerializer
	}
	return Body{data: func() ([]byte, error) {
		b, err := serializer.Encode(value)
		if err != nil {
			return nil, encodingError(err)
		}
		return b, nil
	}}
}

// JSONBody serializes value with DefaultSerializer.
func JSONBody(value any) Body {
	return NewBody(value, DefaultSerializer)
}

// RawBody wraps already encoded bytes.
func RawBody(b []byte) Body {
	raw := bytes.Clone(b)
	return Body{data: func() ([]byte, error) {
		return bytes.Clone(raw), nil
	}}
}

// Data returns the serialized payload. Failures are KindEncoding errors.
func (b Body) Data() ([]byte, error) {
	if b.data == nil {
		return nil, nil
	}
	return b.data()
}

// Equal compares the realized payloads. A body that fails to serialize is
// never equal to anything.
func (b Body) Equal(other Body) bool {
	left, err := b.Data()
	if err != nil {
		return false
	}
	right, err := other.Data()
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}
