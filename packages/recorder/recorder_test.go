package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

func openTemp(t *testing.T) *Recorder {
	t.Helper()
	rec, err := Open("sqlite://" + filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func TestOpen_Prefixes(t *testing.T) {
	tmpDir := t.TempDir()

	for _, path := range []string{
		filepath.Join(tmpDir, "plain.db"),
		"sqlite:" + filepath.Join(tmpDir, "colon.db"),
		"sqlite://" + filepath.Join(tmpDir, "url.db"),
	} {
		rec, err := Open(path)
		require.NoError(t, err, path)
		require.NoError(t, rec.Close())
	}

	_, err := Open("  ")
	assert.Error(t, err)
}

func TestRecorder_RecordsCalls(t *testing.T) {
	rec := openTemp(t)

	calls := 0
	transport := http.TransportFunc(func(ctx context.Context, req *http.Request) (*http.Response, error) {
		calls++
		switch calls {
		case 1:
			return &http.Response{StatusCode: 200, Body: []byte(`{"ok":true}`), Duration: 42 * time.Millisecond}, nil
		case 2:
			return &http.Response{StatusCode: 404, Body: []byte(`{}`)}, nil
		default:
			return nil, errors.New("connection refused")
		}
	})
	caller := http.NewCaller(http.WithTransport(transport), http.WithMiddleware(rec))
	d := http.NewDescriptor(http.StaticURL("https://api.example.com"), http.StaticURL("status"), http.MethodGet)

	for i := 0; i < 3; i++ {
		_, _ = http.Call(context.Background(), caller, d, http.Bytes(), nil)
	}

	entries, err := rec.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "unknown", entries[0].Kind)
	assert.Equal(t, 0, entries[0].Status)
	assert.True(t, entries[0].Failed())

	assert.Equal(t, "rejected", entries[1].Kind)
	assert.Equal(t, 404, entries[1].Status)

	assert.False(t, entries[2].Failed())
	assert.Equal(t, "GET", entries[2].Method)
	assert.Equal(t, "https://api.example.com/status", entries[2].URL)
	assert.Equal(t, 200, entries[2].Status)
	assert.Equal(t, 42*time.Millisecond, entries[2].Duration)
	assert.Equal(t, len(`{"ok":true}`), entries[2].ResponseSize)
}

func TestRecorder_BuildFailure(t *testing.T) {
	rec := openTemp(t)
	caller := http.NewCaller(http.WithMiddleware(rec))
	d := http.NewDescriptor(http.StaticURL("missing-scheme"), http.StaticURL("x"), http.MethodGet)

	_, err := http.Call(context.Background(), caller, d, http.Bytes(), nil)
	require.Error(t, err)

	entries, err := rec.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "building url", entries[0].Kind)
	assert.Empty(t, entries[0].URL)
}

func TestRecent_Limit(t *testing.T) {
	rec := openTemp(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, rec.Insert(Entry{
			Method:     "GET",
			URL:        "https://example.com",
			Status:     200,
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := rec.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].RecordedAt.Equal(base.Add(4*time.Minute)))

	entries, err = rec.Recent(0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}
