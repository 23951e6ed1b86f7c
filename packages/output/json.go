package output

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
	"github.com/abdul-hamid-achik/netrequester/packages/middleware"
	"github.com/abdul-hamid-achik/netrequester/packages/recorder"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Version  string        `json:"version,omitempty"`
	Request  *JSONRequest  `json:"request,omitempty"`
	Response *JSONResponse `json:"response,omitempty"`
	Error    *JSONError    `json:"error,omitempty"`
	History  []JSONEntry   `json:"history,omitempty"`
	Latency  *JSONLatency  `json:"latency,omitempty"`
	Duration float64       `json:"duration"`
	Time     string        `json:"time"`
}

// JSONRequest represents request details
type JSONRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// JSONResponse represents response details. Body is embedded verbatim when it
// is valid JSON and as a string otherwise.
type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       json.RawMessage   `json:"body,omitempty"`
	Duration   float64           `json:"duration"`
}

// JSONError represents a failed call
type JSONError struct {
	Kind    string `json:"kind"`
	Status  int    `json:"status,omitempty"`
	Domain  any    `json:"domain,omitempty"`
	Message string `json:"message"`
}

// JSONEntry represents one recorded call
type JSONEntry struct {
	ID           int64   `json:"id"`
	Method       string  `json:"method"`
	URL          string  `json:"url"`
	Status       int     `json:"status"`
	Kind         string  `json:"kind,omitempty"`
	Duration     float64 `json:"duration"`
	ResponseSize int     `json:"responseSize"`
	RecordedAt   string  `json:"recordedAt"`
}

// JSONLatency summarizes repeated calls. Durations are in milliseconds.
type JSONLatency struct {
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Max   float64 `json:"max"`
}

// JSONFormatter collects one call and writes it as a single document on Flush
type JSONFormatter struct {
	writer io.Writer
	output JSONOutput
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResponse(req *http.Request, resp *http.Response) {
	if req != nil {
		target := ""
		if req.URL != nil {
			target = req.URL.String()
		}
		f.output.Request = &JSONRequest{
			Method:  req.Method.String(),
			URL:     target,
			Headers: flattenHeaders(req.Header),
		}
	}

	if resp != nil {
		f.output.Response = &JSONResponse{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Headers:    flattenHeaders(resp.Header),
			Body:       rawBody(resp.Body),
			Duration:   float64(resp.Duration.Milliseconds()),
		}
	}
}

func (f *JSONFormatter) FormatError(err error) {
	out := &JSONError{Message: err.Error()}
	if e, ok := http.AsError(err); ok {
		out.Kind = e.Kind.String()
		if e.Kind == http.KindRejected {
			out.Status = e.Status.Code()
			out.Domain = e.Domain
		}
	}
	f.output.Error = out
}

func (f *JSONFormatter) FormatHistory(entries []recorder.Entry) {
	f.output.History = make([]JSONEntry, len(entries))
	for i, e := range entries {
		f.output.History[i] = JSONEntry{
			ID:           e.ID,
			Method:       e.Method,
			URL:          e.URL,
			Status:       e.Status,
			Kind:         e.Kind,
			Duration:     float64(e.Duration.Milliseconds()),
			ResponseSize: e.ResponseSize,
			RecordedAt:   e.RecordedAt.UTC().Format(time.RFC3339),
		}
	}
}

func (f *JSONFormatter) FormatHeader(version string) {
	f.output.Version = version
}

func (f *JSONFormatter) FormatLatency(s middleware.LatencySnapshot) {
	if s.Count == 0 {
		return
	}
	f.output.Latency = &JSONLatency{
		Count: s.Count,
		Min:   millis(s.Min),
		Mean:  millis(s.Mean),
		P50:   millis(s.P50),
		P95:   millis(s.P95),
		P99:   millis(s.P99),
		Max:   millis(s.Max),
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	f.output.Duration = float64(totalDuration.Milliseconds())
	f.output.Time = time.Now().Format(time.RFC3339)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.output)
}

func flattenHeaders(h map[string][]string) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for name, values := range h {
		out[name] = strings.Join(values, ",")
	}
	return out
}

func rawBody(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if gjson.ValidBytes(body) {
		return json.RawMessage(body)
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return nil
	}
	return quoted
}
