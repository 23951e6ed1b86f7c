// Package output renders call results for the terminal.
//
// Supported output formats:
//   - Console: human-readable colored output with pretty-printed JSON bodies
//   - JSON: one machine-readable document per call
//
// Each formatter implements the Formatter interface and can optionally
// implement Flushable for formats that accumulate results before output.
package output
