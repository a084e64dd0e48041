package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/observability"
)

const nodeKeyType = "node"

// Cached stores nodes resolved by an inner repository in a cache.Cache as
// JSON. Misses and errors are never cached.
type Cached struct {
	inner collect.Repository
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
	id    string
}

// NewCached wraps inner. Keys are namespaced by the inner repository's
// String form when it has one.
func NewCached(inner collect.Repository, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{inner: inner, cache: c, keyer: keyer, ttl: ttl, id: describe(inner)}
}

func (r *Cached) String() string { return r.id }

func (r *Cached) Resolve(ctx context.Context, c artifact.Coordinate) (*artifact.Node, error) {
	key := r.keyer.NodeKey(r.id, c.String())
	hooks := observability.Cache()

	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		var n artifact.Node
		if err := json.Unmarshal(data, &n); err == nil {
			hooks.OnCacheHit(ctx, nodeKeyType)
			return &n, nil
		}
	}
	hooks.OnCacheMiss(ctx, nodeKeyType)

	n, err := r.inner.Resolve(ctx, c)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(n); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err == nil {
			hooks.OnCacheSet(ctx, nodeKeyType, len(data))
		}
	}
	return n, nil
}

var _ collect.Repository = (*Cached)(nil)
