// Package recorder persists a history of finished calls in SQLite.
package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

const schema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	method        TEXT    NOT NULL,
	url           TEXT    NOT NULL,
	status        INTEGER NOT NULL,
	kind          TEXT    NOT NULL,
	duration_ms   INTEGER NOT NULL,
	response_size INTEGER NOT NULL,
	recorded_at   INTEGER NOT NULL
)`

// Entry is one recorded call. Status is 0 and Kind is set when the call failed
// without a response.
type Entry struct {
	ID           int64
	Method       string
	URL          string
	Status       int
	Kind         string
	Duration     time.Duration
	ResponseSize int
	RecordedAt   time.Time
}

// Failed reports whether the call ended in an error.
func (e Entry) Failed() bool {
	return e.Kind != ""
}

// Recorder is a middleware that writes every finished call to the database.
type Recorder struct {
	db           *sql.DB
	queryTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time

	started sync.Map
}

// Open opens or creates the history database. path may carry a "sqlite://" or
// "sqlite:" prefix.
func Open(path string) (*Recorder, error) {
	dsn := parseConnectionString(path)
	if dsn == "" {
		return nil, fmt.Errorf("history database path is empty")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Recorder{
		db:           db,
		queryTimeout: 30 * time.Second,
		logger:       zap.L().Named("recorder"),
		now:          time.Now,
	}, nil
}

// Close closes the database connection
func (r *Recorder) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Recorder) OnRequest(_ context.Context, req *http.Request) error {
	r.started.Store(req, r.now())
	return nil
}

func (r *Recorder) OnResponse(req *http.Request, resp *http.Response) {
	r.started.Delete(req)
	r.save(Entry{
		Method:       req.Method.String(),
		URL:          urlOf(req),
		Status:       resp.StatusCode,
		Duration:     resp.Duration,
		ResponseSize: len(resp.Body),
	})
}

func (r *Recorder) OnError(err *http.Error, req *http.Request) {
	entry := Entry{Kind: err.Kind.String()}
	if err.Kind == http.KindRejected {
		entry.Status = err.Status.Code()
	}
	if req != nil {
		entry.Method = req.Method.String()
		entry.URL = urlOf(req)
		if v, ok := r.started.LoadAndDelete(req); ok {
			entry.Duration = r.now().Sub(v.(time.Time))
		}
	}
	r.save(entry)
}

func (r *Recorder) save(e Entry) {
	if err := r.Insert(e); err != nil {
		r.logger.Warn("failed to record exchange", zap.Error(err), zap.String("url", e.URL))
	}
}

// Insert writes e. RecordedAt defaults to now.
func (r *Recorder) Insert(e Entry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = r.now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exchanges (method, url, status, kind, duration_ms, response_size, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Method, e.URL, e.Status, e.Kind, e.Duration.Milliseconds(), e.ResponseSize, e.RecordedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *Recorder) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, method, url, status, kind, duration_ms, response_size, recorded_at
		 FROM exchanges ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e          Entry
			durationMs int64
			recordedAt int64
		)
		if err := rows.Scan(&e.ID, &e.Method, &e.URL, &e.Status, &e.Kind, &durationMs, &e.ResponseSize, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.RecordedAt = time.UnixMilli(recordedAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

func urlOf(req *http.Request) string {
	if req.URL == nil {
		return ""
	}
	return req.URL.String()
}

// parseConnectionString strips the sqlite:// and sqlite: prefixes
func parseConnectionString(connStr string) string {
	connStr = strings.TrimSpace(connStr)
	if strings.HasPrefix(connStr, "sqlite://") {
		return strings.TrimPrefix(connStr, "sqlite://")
	}
	return strings.TrimPrefix(connStr, "sqlite:")
}
