package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// ResultCache partitions a domain.QueryCache into namespaces keyed by
// (tenant id, collection). A namespace can only be read and written through
// its own Namespace handle, so one tenant's results are never served for
// another tenant.
type ResultCache struct {
	cache  domain.QueryCache
	logger *slog.Logger

	mu     sync.Mutex
	spaces map[nsKey]*nsState
}

type nsKey struct {
	tenantID   string
	collection string
}

type nsState struct {
	gen  uint64
	keys map[string]struct{}
}

func NewResultCache(cache domain.QueryCache, logger *slog.Logger) *ResultCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultCache{
		cache:  cache,
		logger: logger,
		spaces: make(map[nsKey]*nsState),
	}
}

// Namespace returns the handle for one tenant's collection. Entries written
// through it expire after ttl.
func (rc *ResultCache) Namespace(tenantID, collection string, ttl time.Duration) Namespace {
	return Namespace{rc: rc, key: nsKey{tenantID: tenantID, collection: collection}, ttl: ttl}
}

func (rc *ResultCache) stateLocked(k nsKey) *nsState {
	s, ok := rc.spaces[k]
	if !ok {
		s = &nsState{keys: make(map[string]struct{})}
		rc.spaces[k] = s
	}
	return s
}

// Namespace is a tenant-scoped partition of a ResultCache.
type Namespace struct {
	rc  *ResultCache
	key nsKey
	ttl time.Duration
}

func (n Namespace) TenantID() string   { return n.key.tenantID }
func (n Namespace) Collection() string { return n.key.collection }

// cacheKey escapes the tenant id and collection so that no id can reach into
// another namespace's keys.
func (n Namespace) cacheKey(queryKey string) string {
	return url.PathEscape(n.key.tenantID) + "/" + url.PathEscape(n.key.collection) + "/" + queryKey
}

// Generation identifies the namespace's contents. It changes on Invalidate.
func (n Namespace) Generation() uint64 {
	n.rc.mu.Lock()
	defer n.rc.mu.Unlock()
	return n.rc.stateLocked(n.key).gen
}

// Get decodes the cached result for queryKey into out. Undecodable entries
// are dropped and reported as a miss.
func (n Namespace) Get(ctx context.Context, queryKey string, out any) bool {
	key := n.cacheKey(queryKey)
	data, ok, err := n.rc.cache.Get(ctx, key)
	if err != nil {
		n.rc.logger.Warn("result cache: reading", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		n.rc.logger.Warn("result cache: decoding", "key", key, "error", err)
		_ = n.rc.cache.Delete(ctx, key)
		return false
	}
	return true
}

// Put caches value under queryKey if the namespace is still at generation
// gen, the value observed when the query started. It reports whether the
// value was stored.
func (n Namespace) Put(ctx context.Context, queryKey string, gen uint64, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		n.rc.logger.Warn("result cache: encoding", "collection", n.key.collection, "error", err)
		return false
	}

	n.rc.mu.Lock()
	defer n.rc.mu.Unlock()
	s := n.rc.stateLocked(n.key)
	if s.gen != gen {
		return false
	}
	key := n.cacheKey(queryKey)
	if err := n.rc.cache.Set(ctx, key, data, n.ttl); err != nil {
		n.rc.logger.Warn("result cache: writing", "key", key, "error", err)
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Invalidate drops every cached result of the namespace and advances its
// generation, so queries already in flight cannot repopulate it.
func (n Namespace) Invalidate(ctx context.Context) {
	n.rc.mu.Lock()
	defer n.rc.mu.Unlock()
	s := n.rc.stateLocked(n.key)
	s.gen++
	for key := range s.keys {
		if err := n.rc.cache.Delete(ctx, key); err != nil {
			n.rc.logger.Warn("result cache: deleting", "key", key, "error", err)
		}
	}
	clear(s.keys)
}
