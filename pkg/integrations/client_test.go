package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/depcollect/pkg/cache"
)

func testClient(t *testing.T, srv *httptest.Server, headers map[string]string) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return NewClient(c, "test", time.Hour, headers).
		WithHTTPClient(srv.Client()).
		WithRetry(3, time.Millisecond)
}

func TestNewClient(t *testing.T) {
	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(nil, "test", time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if _, ok := client.cache.(cache.NullCache); !ok {
		t.Errorf("nil cache should default to NullCache, got %T", client.cache)
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestClientUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.UserAgent(), "depcollect/") {
			t.Errorf("User-Agent = %q", r.UserAgent())
		}
		w.Write([]byte("<project/>"))
	}))
	defer server.Close()

	if _, err := testClient(t, server, nil).GetBytes(context.Background(), server.URL); err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
}

func TestClientExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if strings.HasSuffix(r.URL.Path, "-sources.jar") {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	client := testClient(t, server, nil)

	tests := []struct {
		path string
		want bool
	}{
		{"/junit/junit/4.13/junit-4.13.jar", true},
		{"/junit/junit/4.13/junit-4.13-sources.jar", false},
	}
	for _, tt := range tests {
		got, err := client.Exists(context.Background(), server.URL+tt.path)
		if err != nil {
			t.Fatalf("Exists(%s) error: %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("Exists(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestClientHeadersOverrideDefaults(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Override")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := testClient(t, server, map[string]string{"X-Override": "default"})
	if _, err := client.GetBytesWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}); err != nil {
		t.Fatalf("GetBytesWithHeaders() error: %v", err)
	}
	if got != "overridden" {
		t.Errorf("header = %q, want %q", got, "overridden")
	}
}

func TestClientGetBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<project/>"))
	}))
	defer server.Close()

	data, err := testClient(t, server, nil).GetBytes(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
	if string(data) != "<project/>" {
		t.Errorf("GetBytes() = %q", data)
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(t, server, nil).GetBytes(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBytes() error = %v, want ErrNotFound", err)
	}
}

func TestClientGet500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(t, server, nil).GetBytes(context.Background(), server.URL)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("GetBytes() error = %v, want ErrNetwork", err)
	}
	if !cache.IsRetryable(err) {
		t.Errorf("GetBytes() error should be retryable, got %T", err)
	}
}

func TestClientCachedBytes(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("body"))
	}))
	defer server.Close()

	client := testClient(t, server, nil)
	ctx := context.Background()
	fetch := func() ([]byte, error) { return client.GetBytes(ctx, server.URL) }

	for range 3 {
		data, err := client.CachedBytes(ctx, "k", false, fetch)
		if err != nil || string(data) != "body" {
			t.Fatalf("CachedBytes() = (%q, %v)", data, err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}

	if _, err := client.CachedBytes(ctx, "k", true, fetch); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("refresh should bypass the cache, hits = %d", hits.Load())
	}
}

func TestClientCachedRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("finally"))
	}))
	defer server.Close()

	client := testClient(t, server, nil)
	ctx := context.Background()
	data, err := client.CachedBytes(ctx, "flaky", false, func() ([]byte, error) {
		return client.GetBytes(ctx, server.URL)
	})
	if err != nil || string(data) != "finally" {
		t.Fatalf("CachedBytes() = (%q, %v)", data, err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientCachedFetchError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	client := testClient(t, server, nil)

	fetchCount := 0
	_, err := client.CachedBytes(context.Background(), "missing", false, func() ([]byte, error) {
		fetchCount++
		return nil, ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("CachedBytes() error = %v, want ErrNotFound", err)
	}
	if fetchCount != 1 {
		t.Errorf("non-retryable error should not retry, fetchCount = %d", fetchCount)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantErr   error
		retryable bool
	}{
		{"200 OK", 200, nil, false},
		{"404 Not Found", 404, ErrNotFound, false},
		{"500 Internal Server Error", 500, ErrNetwork, true},
		{"503 Service Unavailable", 503, ErrNetwork, true},
		{"401 Unauthorized", 401, ErrNetwork, false},
		{"403 Forbidden", 403, ErrNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.wantErr)
			}
			if got := cache.IsRetryable(err); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}
