// Package observability lets library packages report collection, cache and
// HTTP events without depending on a metrics backend.
//
// Libraries call the package-level accessors:
//
//	observability.Collector().OnResolve(ctx, coord.String(), time.Since(start), err)
//
// Binaries install an implementation once at startup. The serve command
// registers the Prometheus implementation from the prom subpackage:
//
//	prom.New(registry).Register()
//
// Until then every hook is a no-op.
package observability

import (
	"context"
	"sync"
	"time"
)

// CollectorHooks receives events from dependency collection.
type CollectorHooks interface {
	// OnCollectStart is called before the root artifact is resolved.
	OnCollectStart(ctx context.Context, root string)
	// OnCollectComplete is called once per collection with the number of
	// recorded dependencies.
	OnCollectComplete(ctx context.Context, root string, count int, duration time.Duration, err error)
	// OnResolve is called after every repository lookup.
	OnResolve(ctx context.Context, coordinate string, duration time.Duration, err error)
	// OnConflict is called when a version is omitted in favour of a nearer one.
	OnConflict(ctx context.Context, key, kind string)
}

// CacheHooks receives events from cache lookups. keyType names what was
// looked up, such as "node", "result" or a repository namespace.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from requests to remote repositories.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a request that produced no response.
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopCollectorHooks ignores every collector event.
type NoopCollectorHooks struct{}

func (NoopCollectorHooks) OnCollectStart(context.Context, string)                               {}
func (NoopCollectorHooks) OnCollectComplete(context.Context, string, int, time.Duration, error) {}
func (NoopCollectorHooks) OnResolve(context.Context, string, time.Duration, error)              {}
func (NoopCollectorHooks) OnConflict(context.Context, string, string)                           {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

type registry struct {
	collector CollectorHooks
	cache     CacheHooks
	http      HTTPHooks
}

func defaults() registry {
	return registry{
		collector: NoopCollectorHooks{},
		cache:     NoopCacheHooks{},
		http:      NoopHTTPHooks{},
	}
}

var (
	mu     sync.RWMutex
	active = defaults()
)

func update(fn func(*registry)) {
	mu.Lock()
	defer mu.Unlock()
	fn(&active)
}

func current() registry {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// SetCollectorHooks installs h. Nil is ignored.
func SetCollectorHooks(h CollectorHooks) {
	if h != nil {
		update(func(r *registry) { r.collector = h })
	}
}

// SetCacheHooks installs h. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks installs h. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// Collector returns the installed collector hooks.
func Collector() CollectorHooks { return current().collector }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return current().cache }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return current().http }

// Reset restores the no-op hooks. Tests and the serve command call it on
// shutdown.
func Reset() {
	update(func(r *registry) { *r = defaults() })
}
