// Package schema validates decoded payloads against JSON Schema documents.
package schema

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

// ValidationError lists every schema violation found in a payload.
type ValidationError struct {
	Type   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed for %s: %s", e.Type, strings.Join(e.Errors, "; "))
}

// Serializer wraps another Serializer and validates payloads before decoding
// them into a registered type. Unregistered types are decoded without checks.
type Serializer struct {
	inner http.Serializer

	mu      sync.RWMutex
	schemas map[reflect.Type]*gojsonschema.Schema
}

// New wraps inner, or http.DefaultSerializer when nil.
func New(inner http.Serializer) *Serializer {
	if inner == nil {
		inner = http.DefaultSerializer
	}
	return &Serializer{
		inner:   inner,
		schemas: make(map[reflect.Type]*gojsonschema.Schema),
	}
}

// Register binds schemaJSON to the type of target. target may be a value or a
// pointer.
func (s *Serializer) Register(target any, schemaJSON string) error {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	s.mu.Lock()
	s.schemas[typeOf(target)] = compiled
	s.mu.Unlock()
	return nil
}

// RegisterFile reads a schema from path and binds it like Register.
func (s *Serializer) RegisterFile(target any, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	return s.Register(target, string(data))
}

func (s *Serializer) Encode(v any) ([]byte, error) {
	return s.inner.Encode(v)
}

func (s *Serializer) Decode(data []byte, v any) error {
	s.mu.RLock()
	compiled, ok := s.schemas[typeOf(v)]
	s.mu.RUnlock()

	if ok {
		result, err := compiled.Validate(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return fmt.Errorf("schema validation error: %w", err)
		}
		if !result.Valid() {
			verr := &ValidationError{Type: typeOf(v).String()}
			for _, desc := range result.Errors() {
				verr.Errors = append(verr.Errors, desc.String())
			}
			return verr
		}
	}
	return s.inner.Decode(data, v)
}

func typeOf(v any) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
