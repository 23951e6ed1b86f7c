package http

import "strings"

const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"

	ContentTypeJSON = "application/json"
)

// Header is a single name/value pair. Two headers are equal when both name and
// value match.
type Header struct {
	Name  string
	Value string
}

// JSONHeader declares a JSON request payload.
var JSONHeader = Header{Name: HeaderContentType, Value: ContentTypeJSON}

// Authorization returns an Authorization header carrying token verbatim.
func Authorization(token string) Header {
	return Header{Name: HeaderAuthorization, Value: token}
}

// BearerAuthorization returns an Authorization header with a Bearer token.
func BearerAuthorization(token string) Header {
	return Authorization("Bearer " + token)
}

// HeaderSet is an ordered collection of headers. Identical pairs collapse into
// one entry; different values under the same name are all retained.
type HeaderSet struct {
	headers []Header
}

// NewHeaderSet builds a set from headers, preserving first-seen order.
func NewHeaderSet(headers ...Header) HeaderSet {
	var s HeaderSet
	for _, h := range headers {
		s = s.With(h)
	}
	return s
}

// With returns a copy of the set with h added.
func (s HeaderSet) With(h Header) HeaderSet {
	for _, existing := range s.headers {
		if existing == h {
			return s
		}
	}
	headers := make([]Header, len(s.headers), len(s.headers)+1)
	copy(headers, s.headers)
	return HeaderSet{headers: append(headers, h)}
}

// Has reports whether any header with the given name is present. Names are
// compared case-insensitively.
func (s HeaderSet) Has(name string) bool {
	for _, h := range s.headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

// Values returns every value stored under name, in insertion order.
func (s HeaderSet) Values(name string) []string {
	var values []string
	for _, h := range s.headers {
		if strings.EqualFold(h.Name, name) {
			values = append(values, h.Value)
		}
	}
	return values
}

// Headers returns a copy of the stored headers.
func (s HeaderSet) Headers() []Header {
	out := make([]Header, len(s.headers))
	copy(out, s.headers)
	return out
}

func (s HeaderSet) Len() int {
	return len(s.headers)
}
