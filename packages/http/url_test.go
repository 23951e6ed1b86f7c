package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		path     string
		items    []QueryItem
		expected string
	}{
		{
			name:     "no slashes",
			base:     "https://api.example.com",
			path:     "users",
			expected: "https://api.example.com/users",
		},
		{
			name:     "slashes on both sides",
			base:     "https://api.example.com/",
			path:     "/users",
			expected: "https://api.example.com/users",
		},
		{
			name:     "base with path",
			base:     "https://api.example.com/v1/",
			path:     "users/42",
			expected: "https://api.example.com/v1/users/42",
		},
		{
			name:     "query items keep order",
			base:     "https://api.example.com",
			path:     "search",
			items:    []QueryItem{Param("b", "2"), Param("a", "1"), Flag("debug")},
			expected: "https://api.example.com/search?b=2&a=1&debug",
		},
		{
			name:     "query values are escaped",
			base:     "https://api.example.com",
			path:     "search",
			items:    []QueryItem{Param("q", "a b&c")},
			expected: "https://api.example.com/search?q=a%20b%26c",
		},
		{
			name:     "duplicate names are kept",
			base:     "https://api.example.com",
			path:     "items",
			items:    []QueryItem{Param("id", "1"), Param("id", "2")},
			expected: "https://api.example.com/items?id=1&id=2",
		},
		{
			name:     "existing base query is extended",
			base:     "https://api.example.com?key=abc",
			path:     "items",
			items:    []QueryItem{Param("page", "2")},
			expected: "https://api.example.com/items?key=abc&page=2",
		},
		{
			name:     "empty items add no question mark",
			base:     "https://api.example.com",
			path:     "users",
			items:    []QueryItem{},
			expected: "https://api.example.com/users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ComposeURL(tt.base, tt.path, tt.items)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, u.String())
		})
	}
}

func TestComposeURL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		base string
	}{
		{"missing scheme", "api.example.com"},
		{"missing host", "https://"},
		{"unparseable", "https://api.example.com:port"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ComposeURL(tt.base, "users", nil)
			assert.Nil(t, u)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBuildingURL)
		})
	}
}
