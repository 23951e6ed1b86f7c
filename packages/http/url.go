package http

import (
	"errors"
	"fmt"
	neturl "net/url"
	"strings"
)

var (
	errMissingScheme       = errors.New("base URL has no scheme")
	errMissingHost         = errors.New("base URL has no host")
	errNotAbsolute         = errors.New("composed URL is not absolute")
	errInvalidQueryPayload = errors.New("query value did not serialize to valid JSON")
)

// ComposeURL joins base, path and query items into one absolute URL. Exactly
// one slash separates the base path from path whether or not either side
// already has one. No "?" is appended when items is empty.
func ComposeURL(base, path string, items []QueryItem) (*neturl.URL, error) {
	u, err := neturl.Parse(base)
	if err != nil {
		return nil, buildingURLError(err)
	}
	if u.Scheme == "" {
		return nil, buildingURLError(errMissingScheme)
	}
	if u.Host == "" {
		return nil, buildingURLError(errMissingHost)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawPath = ""
	if len(items) > 0 {
		if u.RawQuery != "" {
			u.RawQuery += "&"
		}
		u.RawQuery += encodeQuery(items)
	}

	composed, err := neturl.Parse(u.String())
	if err != nil {
		return nil, buildingURLError(err)
	}
	if !composed.IsAbs() {
		return nil, buildingURLError(errNotAbsolute)
	}
	return composed, nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}
