package client

import (
	"context"
	"fmt"
	"sync"
)

// Loader produces a fresh result for a named query.
type Loader func(ctx context.Context) (any, error)

// QueryCache holds named query results and re-runs loaders after
// invalidation. There is no diffing: an invalidated query is re-fetched
// in full on the next read.
type QueryCache struct {
	mu      sync.Mutex
	queries map[string]*query
}

type query struct {
	loader Loader
	value  any
	loaded bool
	stale  bool
}

// NewQueryCache builds an empty cache.
func NewQueryCache() *QueryCache {
	return &QueryCache{queries: make(map[string]*query)}
}

// Register binds a loader to a query name. Re-registering replaces the
// loader and discards any cached result.
func (qc *QueryCache) Register(name string, loader Loader) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.queries[name] = &query{loader: loader}
}

// Fetch returns the cached result, running the loader first when the
// query has never loaded or was invalidated. A loader error leaves the
// previous result in place.
func (qc *QueryCache) Fetch(ctx context.Context, name string) (any, error) {
	qc.mu.Lock()
	q, ok := qc.queries[name]
	qc.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("client: unknown query %q", name)
	}

	qc.mu.Lock()
	fresh := q.loaded && !q.stale
	cached := q.value
	qc.mu.Unlock()
	if fresh {
		return cached, nil
	}

	v, err := q.loader(ctx)
	if err != nil {
		return nil, err
	}
	qc.mu.Lock()
	q.value = v
	q.loaded = true
	q.stale = false
	qc.mu.Unlock()
	return v, nil
}

// Invalidate marks a query stale. The cached value stays readable until
// the next Fetch replaces it. Unknown names are ignored.
func (qc *QueryCache) Invalidate(name string) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if q, ok := qc.queries[name]; ok {
		q.stale = true
	}
}

// InvalidateAll marks every registered query stale.
func (qc *QueryCache) InvalidateAll() {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	for _, q := range qc.queries {
		q.stale = true
	}
}
