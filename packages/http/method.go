package http

// Method is an HTTP request method. The set is open: any uppercase token is a
// valid Method and two methods are equal when their strings are equal.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// String returns the wire form of the method.
func (m Method) String() string {
	return string(m)
}
