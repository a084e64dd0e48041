package integrations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/depcollect/pkg/buildinfo"
	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/observability"
)

// DefaultTimeout bounds a single request to a repository.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a repository answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and unexpected statuses.
	// 5xx responses are additionally marked retryable.
	ErrNetwork = errors.New("network error")
)

// Client provides shared HTTP functionality for repository clients.
// It handles caching, retry logic, and common request headers.
//
// A Client is safe for concurrent use.
type Client struct {
	http       *http.Client
	cache      cache.Cache
	keyer      cache.Keyer
	namespace  string
	ttl        time.Duration
	headers    map[string]string
	attempts   int
	retryDelay time.Duration
}

// NewClient creates a Client whose responses are cached in c under
// namespace for ttl. A nil cache disables caching. Headers are applied to
// every request.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:       &http.Client{Timeout: DefaultTimeout},
		cache:      c,
		keyer:      cache.NewDefaultKeyer(),
		namespace:  namespace,
		ttl:        ttl,
		headers:    headers,
		attempts:   3,
		retryDelay: time.Second,
	}
}

// WithHTTPClient returns a copy of c using hc for requests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.http = hc
	return &cp
}

// WithRetry returns a copy of c with a different retry policy.
func (c *Client) WithRetry(attempts int, delay time.Duration) *Client {
	cp := *c
	cp.attempts = attempts
	cp.retryDelay = delay
	return &cp
}

// WithKeyer returns a copy of c that builds cache keys with k.
func (c *Client) WithKeyer(k cache.Keyer) *Client {
	cp := *c
	cp.keyer = k
	return &cp
}

// CachedBytes returns the cached value for key or calls fetch, with
// retries, and caches its result. If refresh is true the cache is bypassed
// for reading but still updated.
func (c *Client) CachedBytes(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	ck := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, ck); ok {
			observability.Cache().OnCacheHit(ctx, c.namespace)
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, c.namespace)
	}

	var data []byte
	err := cache.Retry(ctx, c.attempts, c.retryDelay, func() error {
		var err error
		data, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, ck, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, c.namespace, len(data))
	}
	return data, nil
}

// GetBytes performs an HTTP GET request and returns the response body.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	return c.GetBytesWithHeaders(ctx, url, nil)
}

// GetBytesWithHeaders is GetBytes with additional headers merged over the
// client defaults.
func (c *Client) GetBytesWithHeaders(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, err := c.send(ctx, http.MethodGet, url, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	return data, nil
}

// Exists reports whether url answers a HEAD request with 200.
// A 404 is reported as false with a nil error.
func (c *Client) Exists(ctx context.Context, url string) (bool, error) {
	body, err := c.send(ctx, http.MethodHead, url, nil)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	body.Close()
	return true, nil
}

func (c *Client) send(ctx context.Context, method, rawURL string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "depcollect/"+buildinfo.Get().Version)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func hostPath(u *url.URL) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.Host, u.Path
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
