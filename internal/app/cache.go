package app

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// Storage keys used by the tenant cache.
const (
	tenantKeyPrefix  = "tenant_cache:"
	currentIDKey     = "current_tenant_id"
	currentSlugKey   = "current_tenant_slug"
	DefaultTenantTTL = 30 * time.Minute
)

// CacheEntry is a cached snapshot of a tenant. It is valid while now <= ExpiresAt.
type CacheEntry struct {
	Tenant    domain.Tenant `json:"tenant"`
	CachedAt  time.Time     `json:"cachedAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// TenantCache stores resolved tenants by slug with a TTL, on durable storage.
// Storage failures are logged and otherwise ignored: every operation degrades
// to a no-op or a miss.
type TenantCache struct {
	storage    domain.Storage
	defaultTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time // for testing
}

// CacheOption configures a TenantCache.
type CacheOption func(*TenantCache)

// WithDefaultTTL sets the TTL used when Set is called with ttl <= 0.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *TenantCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *TenantCache) { c.now = now }
}

// WithCacheLogger sets the logger for storage failures.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *TenantCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewTenantCache creates a cache over storage.
func NewTenantCache(storage domain.Storage, opts ...CacheOption) *TenantCache {
	c := &TenantCache{
		storage:    storage,
		defaultTTL: DefaultTenantTTL,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func tenantKey(slug string) string { return tenantKeyPrefix + slug }

// Set caches tenant under slug and records it as the current tenant.
func (c *TenantCache) Set(slug string, tenant domain.Tenant, ttl time.Duration) {
	c.SetEntry(slug, tenant, ttl)
	c.SetCurrent(tenant.ID, slug)
}

// SetEntry caches tenant under slug without touching the current-tenant keys.
func (c *TenantCache) SetEntry(slug string, tenant domain.Tenant, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.now()
	entry := CacheEntry{Tenant: tenant, CachedAt: now, ExpiresAt: now.Add(ttl)}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("tenant cache: encoding entry", "slug", slug, "error", err)
		return
	}
	c.put(tenantKey(slug), data)
}

// SetCurrent records the bound tenant in the current-tenant keys.
func (c *TenantCache) SetCurrent(tenantID, slug string) {
	c.put(currentIDKey, []byte(tenantID))
	c.put(currentSlugKey, []byte(slug))
}

// Get returns the cached tenant for slug. An expired or unreadable entry is a
// miss and is evicted.
func (c *TenantCache) Get(slug string) (domain.Tenant, bool) {
	key := tenantKey(slug)
	data, ok, err := c.storage.Get(key)
	if err != nil {
		c.logger.Warn("tenant cache: reading entry", "slug", slug, "error", err)
		return domain.Tenant{}, false
	}
	if !ok {
		return domain.Tenant{}, false
	}

	entry, err := decodeEntry(data)
	if err != nil || c.now().After(entry.ExpiresAt) {
		c.delete(key)
		return domain.Tenant{}, false
	}
	return entry.Tenant, true
}

// Remove deletes the entry for slug.
func (c *TenantCache) Remove(slug string) {
	c.delete(tenantKey(slug))
}

// Invalidate deletes the entry for slug after a known change to the tenant.
func (c *TenantCache) Invalidate(slug string) {
	c.Remove(slug)
}

// Clear removes every tenant entry and the current-tenant keys.
func (c *TenantCache) Clear() {
	keys, err := c.storage.Keys(tenantKeyPrefix)
	if err != nil {
		c.logger.Warn("tenant cache: listing entries", "error", err)
	}
	for _, k := range keys {
		c.delete(k)
	}
	c.ClearCurrent()
}

// ClearCurrent removes the current-tenant keys only.
func (c *TenantCache) ClearCurrent() {
	c.delete(currentIDKey)
	c.delete(currentSlugKey)
}

// CurrentTenantID returns the id of the last tenant cached, if any.
func (c *TenantCache) CurrentTenantID() (string, bool) {
	return c.readString(currentIDKey)
}

// CurrentSlug returns the slug of the last tenant cached, if any.
func (c *TenantCache) CurrentSlug() (string, bool) {
	return c.readString(currentSlugKey)
}

// CleanExpired removes every entry past its expiry, including entries that
// cannot be decoded. It returns how many were removed.
func (c *TenantCache) CleanExpired() int {
	keys, err := c.storage.Keys(tenantKeyPrefix)
	if err != nil {
		c.logger.Warn("tenant cache: listing entries", "error", err)
		return 0
	}

	now := c.now()
	removed := 0
	for _, k := range keys {
		data, ok, err := c.storage.Get(k)
		if err != nil || !ok {
			continue
		}
		entry, err := decodeEntry(data)
		if err == nil && !entry.ExpiresAt.Before(now) {
			continue
		}
		c.delete(k)
		removed++
	}
	if removed > 0 {
		c.logger.Debug("tenant cache: cleaned expired entries", "removed", removed)
	}
	return removed
}

func decodeEntry(data []byte) (CacheEntry, error) {
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return CacheEntry{}, err
	}
	if entry.ExpiresAt.IsZero() {
		return CacheEntry{}, errMalformedEntry
	}
	return entry, nil
}

type cacheError string

func (e cacheError) Error() string { return string(e) }

const errMalformedEntry = cacheError("cache entry has no expiry")

func (c *TenantCache) readString(key string) (string, bool) {
	data, ok, err := c.storage.Get(key)
	if err != nil {
		c.logger.Warn("tenant cache: reading key", "key", key, "error", err)
		return "", false
	}
	s := strings.TrimSpace(string(data))
	return s, ok && s != ""
}

func (c *TenantCache) put(key string, value []byte) {
	if err := c.storage.Put(key, value); err != nil {
		c.logger.Warn("tenant cache: writing key", "key", key, "error", err)
	}
}

func (c *TenantCache) delete(key string) {
	if err := c.storage.Delete(key); err != nil {
		c.logger.Warn("tenant cache: deleting key", "key", key, "error", err)
	}
}
