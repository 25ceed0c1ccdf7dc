package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"pixpal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	ctx := context.Background()

	written, err := SaveBytes(ctx, path, []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, path, written)

	_, err = SaveBytes(ctx, "file://"+path, []byte("second"))
	require.NoError(t, err)

	data, err := LoadBytes(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	_, err = LoadBytes(ctx, filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = SaveBytes(ctx, filepath.Join(dir, "no", "such", "dir.png"), []byte("x"))
	assert.Error(t, err)
}

func TestFor(t *testing.T) {
	store, err := For("some/image.png")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = For("HTTPS://example.com/a.png")
	require.NoError(t, err)
	assert.IsType(t, &HTTPStore{}, store)

	_, err = For("ftp://example.com/a.png")
	assert.ErrorContains(t, err, "ftp")
}

func testHTTPStore() *HTTPStore {
	s := NewHTTPStore(config.FetchConfig{
		Retries:    3,
		MinBackoff: time.Millisecond,
		MaxBackoff: 2 * time.Millisecond,
		Timeout:    5 * time.Second,
	})
	return s
}

func TestHTTPLoadRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("png bytes"))
	}))
	defer srv.Close()

	data, err := testHTTPStore().Load(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPLoadGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testHTTPStore().Load(context.Background(), srv.URL)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, int32(4), calls.Load(), "one attempt plus three retries")
}

func TestHTTPLoadNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testHTTPStore().Load(context.Background(), srv.URL)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.False(t, statusErr.Temporary())
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPLoadCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := testHTTPStore()
	s.Backoff.Min, s.Backoff.Max = time.Hour, time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.Load(ctx, srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPSave(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	written, err := testHTTPStore().Save(context.Background(), srv.URL+"/b.png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/b.png", written)
	assert.Equal(t, []byte("data"), got)
}

func TestParseS3ID(t *testing.T) {
	bucket, key, err := parseS3ID("s3://images/a/b.png", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "images", bucket)
	assert.Equal(t, "a/b.png", key)

	bucket, key, err = parseS3ID("s3:///b.png", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", bucket)
	assert.Equal(t, "b.png", key)

	_, _, err = parseS3ID("s3:///b.png", "")
	assert.ErrorContains(t, err, "no bucket")

	_, _, err = parseS3ID("http://x/y", "b")
	assert.Error(t, err)

	assert.Equal(t, "s3://images/a/b.png", s3ID("images", "a/b.png"))
}
