package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
	"github.com/abdul-hamid-achik/netrequester/packages/output"
)

// Exit codes for netreq CLI
const (
	// ExitSuccess indicates the call succeeded
	ExitSuccess = 0

	// ExitRejected indicates the server answered with a non-success status
	ExitRejected = 1

	// ExitRequestError indicates the request could not be built or encoded
	ExitRequestError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitDecodeError indicates the response did not have the expected shape
	ExitDecodeError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the exit code of an error the command already reported.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func configError(err error) error { return withExitCode(ExitConfigError, err) }
func usageError(err error) error  { return withExitCode(ExitUsageError, err) }

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if e, ok := http.AsError(err); ok {
		switch e.Kind {
		case http.KindRejected:
			return ExitRejected
		case http.KindBuildingURL, http.KindEncoding:
			return ExitRequestError
		case http.KindDecoding:
			return ExitDecodeError
		default:
			return ExitNetworkError
		}
	}
	return ExitUsageError
}

// reported marks err as already printed by a formatter.
func reported(err error) error {
	return &exitError{code: exitCode(err), err: err, reported: true}
}

func printError(cmd *cobra.Command, err error) {
	var ee *exitError
	if errors.As(err, &ee) && ee.reported {
		return
	}
	output.NewConsoleFormatter(output.WithWriter(cmd.ErrOrStderr())).FormatError(err)
}
