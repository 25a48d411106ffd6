package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testTree() fstest.MapFS {
	return fstest.MapFS{
		"index.html":                        {Data: []byte("<html>shell</html>")},
		"manifest.json":                     {Data: []byte(`{}`)},
		"dma/2025-01-01/output/output.json": {Data: []byte(`[]`)},
	}
}

func serve(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestServesFilesWithoutCaching(t *testing.T) {
	s := NewServer(testTree(), nil)

	rec := serve(t, s, http.MethodGet, "/manifest.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}", rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = serve(t, s, http.MethodGet, "/dma/2025-01-01/output/output.json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestServesShellAtRoot(t *testing.T) {
	s := NewServer(testTree(), nil)

	rec := serve(t, s, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shell")
}

func TestMissingFile(t *testing.T) {
	s := NewServer(testTree(), nil)

	rec := serve(t, s, http.MethodGet, "/pv/index.html")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestHealth(t *testing.T) {
	s := NewServer(testTree(), nil)

	rec := serve(t, s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRebuild(t *testing.T) {
	calls := 0
	s := NewServer(testTree(), nil, WithRebuild(func(ctx context.Context) error {
		calls++
		return nil
	}))

	rec := serve(t, s, http.MethodPost, "/-/rebuild")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, calls)
}

func TestRebuildFailure(t *testing.T) {
	s := NewServer(testTree(), nil, WithRebuild(func(ctx context.Context) error {
		return errors.New("scan exploded")
	}))

	rec := serve(t, s, http.MethodPost, "/-/rebuild")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "scan exploded")
}

func TestRebuildDisabled(t *testing.T) {
	s := NewServer(testTree(), nil)

	rec := serve(t, s, http.MethodPost, "/-/rebuild")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := NewServer(testTree(), zap.New(core))

	serve(t, s, http.MethodGet, "/manifest.json")

	entries := logs.FilterMessage("Request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/manifest.json", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := NewServer(testTree(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	assert.NoError(t, <-done)
}

func TestRebuildsDoNotOverlap(t *testing.T) {
	var active, maxActive, calls atomic.Int32
	s := NewServer(testTree(), nil, WithRebuild(func(ctx context.Context) error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return nil
	}))

	const requests = 4
	var wg sync.WaitGroup
	codes := make([]int, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = serve(t, s, http.MethodPost, "/-/rebuild").Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusNoContent, code)
	}
	assert.Equal(t, int32(requests), calls.Load())
	assert.Equal(t, int32(1), maxActive.Load(), "rebuilds ran concurrently")
}
