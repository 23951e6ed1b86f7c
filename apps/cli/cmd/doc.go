// Package cmd implements the netreq CLI commands using Cobra.
//
// Available commands:
//   - call: Perform one request against a configured environment
//   - history: Show calls recorded with --record
//   - init: Create a .netreq.yaml with example environments
//   - completion: Generate shell completion scripts
//   - version: Show netreq version information
package cmd
