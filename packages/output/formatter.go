package output

import (
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
	"github.com/abdul-hamid-achik/netrequester/packages/middleware"
	"github.com/abdul-hamid-achik/netrequester/packages/recorder"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Formatter renders the outcome of a call. resp is nil when the call failed
// before a response arrived.
type Formatter interface {
	FormatResponse(req *http.Request, resp *http.Response)
	FormatError(err error)
	FormatHistory(entries []recorder.Entry)
	FormatHeader(version string)
	// FormatLatency summarizes repeated calls.
	FormatLatency(s middleware.LatencySnapshot)
}

// Flushable is implemented by formatters that buffer output until the end.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// New returns the formatter for format.
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch format {
	case "", FormatConsole:
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case FormatJSON:
		return NewJSONFormatter(JSONWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected %s or %s)", format, FormatConsole, FormatJSON)
	}
}
