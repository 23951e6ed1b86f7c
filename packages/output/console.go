package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
	"github.com/abdul-hamid-achik/netrequester/packages/middleware"
	"github.com/abdul-hamid-achik/netrequester/packages/recorder"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	case map[string]string:
		return fmt.Sprintf("{map with %d entries}", len(val))
	case map[string][]string:
		return fmt.Sprintf("{headers with %d entries}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// FormatResponse prints the status line and body. In verbose mode the request
// line and both header sets are printed too.
func (f *ConsoleFormatter) FormatResponse(req *http.Request, resp *http.Response) {
	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if f.verbose && req != nil {
		target := ""
		if req.URL != nil {
			target = req.URL.String()
		}
		fmt.Fprintf(f.writer, "%s %s %s\n", cyan(">"), req.Method, target)
		for _, line := range headerLines(req.Header) {
			fmt.Fprintf(f.writer, "%s %s\n", cyan(">"), line)
		}
		fmt.Fprintln(f.writer)
	}

	if resp == nil {
		return
	}

	status := statusColor(resp.StatusCode).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", status(statusText(resp)), gray(fmt.Sprintf("(%dms)", resp.DurationMs())))

	if f.verbose {
		for _, line := range headerLines(resp.Header) {
			fmt.Fprintf(f.writer, "%s %s\n", cyan("<"), line)
		}
	}

	if len(resp.Body) == 0 {
		return
	}
	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, prettyBody(resp.Body))
}

// FormatError prints err with its kind, and the status and decoded error body
// of a rejection.
func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	e, ok := http.AsError(err)
	if !ok {
		fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
		return
	}

	fmt.Fprintf(f.writer, "%s %s\n", red("Error:"), e.Kind)
	if e.Kind == http.KindRejected {
		fmt.Fprintf(f.writer, "  %s %s\n", yellow("status:"), e.Status)
		if e.Domain != nil {
			fmt.Fprintf(f.writer, "  %s %s\n", yellow("error:"), formatValue(e.Domain, 200))
		}
	}
	if e.Cause != nil {
		fmt.Fprintf(f.writer, "  %s %v\n", yellow("cause:"), e.Cause)
	}
}

func (f *ConsoleFormatter) FormatHistory(entries []recorder.Entry) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if len(entries) == 0 {
		fmt.Fprintln(f.writer, gray("No recorded calls"))
		return
	}

	for _, e := range entries {
		mark := green("✓")
		result := fmt.Sprintf("%d", e.Status)
		if e.Failed() {
			mark = red("✗")
			if e.Status == 0 {
				result = e.Kind
			} else {
				result = fmt.Sprintf("%d %s", e.Status, e.Kind)
			}
		}
		fmt.Fprintf(f.writer, "%s %s %-7s %s %s %s\n",
			mark,
			gray(e.RecordedAt.Format("2006-01-02 15:04:05")),
			e.Method,
			e.URL,
			result,
			gray(fmt.Sprintf("(%dms)", e.Duration.Milliseconds())))
	}
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("netreq"), version)
}

func (f *ConsoleFormatter) FormatLatency(s middleware.LatencySnapshot) {
	if s.Count == 0 {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "\n%s %d calls  min %s  mean %s  p50 %s  p95 %s  p99 %s  max %s\n",
		bold("Latency:"), s.Count,
		roundMs(s.Min), roundMs(s.Mean), roundMs(s.P50), roundMs(s.P95), roundMs(s.P99), roundMs(s.Max))
}

func roundMs(d time.Duration) time.Duration {
	if d < time.Millisecond {
		return d.Round(time.Microsecond)
	}
	return d.Round(time.Millisecond)
}

func statusColor(code int) *color.Color {
	status, ok := http.ParseStatus(code)
	if !ok {
		return color.New(color.FgRed, color.Bold)
	}
	switch status.Band() {
	case http.BandSuccess:
		return color.New(color.FgGreen, color.Bold)
	case http.BandRedirection:
		return color.New(color.FgCyan, color.Bold)
	case http.BandClientError:
		return color.New(color.FgYellow, color.Bold)
	case http.BandServerError:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.Bold)
	}
}

func statusText(resp *http.Response) string {
	if status, ok := http.ParseStatus(resp.StatusCode); ok {
		return status.String()
	}
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d", resp.StatusCode)
}

func headerLines(h map[string][]string) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+": "+strings.Join(h[name], ","))
	}
	return lines
}

// prettyBody indents JSON bodies and returns anything else as text.
func prettyBody(body []byte) string {
	if gjson.ValidBytes(body) {
		return strings.TrimRight(gjson.GetBytes(body, "@pretty").Raw, "\n")
	}
	return string(body)
}
