package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the netreq configuration
type Config struct {
	DefaultEnvironment string                    `json:"defaultEnvironment,omitempty" yaml:"defaultEnvironment,omitempty"`
	Environments       map[string]map[string]any `json:"environments,omitempty" yaml:"environments,omitempty"`
	// BaseURL may reference {{variables}} from the active environment.
	BaseURL string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	// Timeout is in milliseconds.
	Timeout         int    `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	FollowRedirects *bool  `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	MaxRedirects    int    `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	ValidateSSL     *bool  `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	Proxy           string `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	// Default headers for all requests
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	// Transport is "net" or "resty".
	Transport string `json:"transport,omitempty" yaml:"transport,omitempty"`
	// Retries applies to the resty transport only.
	Retries int `json:"retries,omitempty" yaml:"retries,omitempty"`
	// RateLimit is in requests per second. 0 disables limiting.
	RateLimit  float64 `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
	RecordPath string  `json:"recordPath,omitempty" yaml:"recordPath,omitempty"`
	LogLevel   string  `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFormat  string  `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
	Verbose    *bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor    *bool   `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

const (
	TransportNet   = "net"
	TransportResty = "resty"
)

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration converts Timeout to a duration. Non-positive values mean
// the default of 30 seconds.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return time.Duration(defaultTimeoutMs) * time.Millisecond
	}
	return time.Duration(c.Timeout) * time.Millisecond
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Transport {
	case "", TransportNet, TransportResty:
	default:
		return fmt.Errorf("unknown transport %q (expected %s or %s)", c.Transport, TransportNet, TransportResty)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rateLimit must not be negative")
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("maxRedirects must not be negative")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	return nil
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".netreq.yaml",
	".netreq.yml",
	"netreq.yaml",
	".netreq.json",
	"netreq.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.DefaultEnvironment != "" {
		result.DefaultEnvironment = other.DefaultEnvironment
	}
	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.Transport != "" {
		result.Transport = other.Transport
	}
	if other.Retries > 0 {
		result.Retries = other.Retries
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}
	if other.RecordPath != "" {
		result.RecordPath = other.RecordPath
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		result.LogFormat = other.LogFormat
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	if len(other.Environments) > 0 {
		envs := make(map[string]map[string]any, len(result.Environments)+len(other.Environments))
		for k, v := range result.Environments {
			envs[k] = v
		}
		for k, v := range other.Environments {
			envs[k] = v
		}
		result.Environments = envs
	}

	return &result
}

// SaveConfig saves the configuration to a file. The format follows the file
// extension.
func (c *Config) SaveConfig(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
