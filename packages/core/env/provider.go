package env

// Template is a URL template such as "{{baseUrl}}/v1". It implements both
// http.EnvironmentProvider and http.EndpointProvider, resolving against the
// resolver when the URL is requested.
type Template struct {
	raw      string
	resolver *Resolver
}

func NewTemplate(raw string, resolver *Resolver) Template {
	if resolver == nil {
		resolver = NewResolver()
	}
	return Template{raw: raw, resolver: resolver}
}

func (t Template) URL() string {
	return t.resolver.Resolve(t.raw)
}

// Unresolved lists the references the template cannot resolve yet.
func (t Template) Unresolved() []string {
	return t.resolver.GetUnresolvedVariables(t.raw)
}

func (t Template) String() string {
	return t.raw
}
