package http

import "encoding/json"

// Serializer turns values into payload bytes and back. Implementations must be
// stateless and safe for concurrent use.
type Serializer interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// JSONSerializer encodes with encoding/json.
type JSONSerializer struct{}

func (JSONSerializer) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// DefaultSerializer is used when no serializer is configured.
var DefaultSerializer Serializer = JSONSerializer{}
