// Package env handles environment variables and variable resolution for
// netreq.
//
// It provides functionality for:
//   - Loading environment files (.env, .env.local, etc.)
//   - Variable interpolation using {{variable}} syntax
//   - OS variable expansion using ${VAR} syntax
//   - URL templates that resolve against the active environment
package env
