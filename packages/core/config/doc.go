// Package config handles configuration loading and management for netreq.
//
// It provides functionality for:
//   - Loading configuration from .netreq.yaml or .netreq.json files
//   - Default configuration values
//   - Named environments whose variables feed URL templates
package config
