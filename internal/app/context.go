package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// TenantResolver resolves a slug to a tenant. *Resolver implements it.
type TenantResolver interface {
	Resolve(ctx context.Context, slug string) (domain.Tenant, error)
}

// ContextState is a snapshot of the tenant binding.
type ContextState struct {
	Status   domain.State
	TenantID string
	Slug     string
	Tenant   *domain.Tenant // nil unless Status is valid
	Err      error          // set when Status is invalid
	Version  uint64         // increases with every committed change
}

// Loading reports whether a resolution is in flight.
func (s ContextState) Loading() bool { return s.Status == domain.StateLoading }

// IsValidTenant reports whether a tenant is bound.
func (s ContextState) IsValidTenant() bool { return s.Status == domain.StateValid }

// TenantContext is the session's single binding to the active tenant. It is
// driven by LoadTenant, ClearTenant and SyncRoute; state changes follow
// domain.ContextTransitions.
type TenantContext struct {
	resolver  TenantResolver
	cache     *TenantCache
	validator domain.TransitionValidator
	matcher   domain.RouteMatcher
	logger    *slog.Logger

	mu       sync.Mutex
	state    domain.State
	slug     string
	tenant   *domain.Tenant
	err      error
	token    uint64 // identifies the latest request; older completions are discarded
	version  uint64
	nextID   int
	watchers []watcher

	notifyMu  sync.Mutex
	delivered uint64
}

type watcher struct {
	id int
	fn func(ContextState)
}

// ContextOption configures a TenantContext.
type ContextOption func(*TenantContext)

// WithRouteMatcher replaces the default route matcher used by SyncRoute.
func WithRouteMatcher(m domain.RouteMatcher) ContextOption {
	return func(c *TenantContext) { c.matcher = m }
}

// WithContextLogger sets the logger.
func WithContextLogger(logger *slog.Logger) ContextOption {
	return func(c *TenantContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewTenantContext(resolver TenantResolver, cache *TenantCache, validator domain.TransitionValidator, opts ...ContextOption) *TenantContext {
	c := &TenantContext{
		resolver:  resolver,
		cache:     cache,
		validator: validator,
		matcher:   domain.DefaultRouteMatcher(),
		logger:    slog.Default(),
		state:     domain.StateEmpty,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Operations ---

// LoadTenant binds the context to the tenant addressed by slug.
//
// Calling it again with the slug already bound and valid is a no-op. A call
// for another slug supersedes any resolution in flight: when the earlier
// resolution completes it returns domain.ErrSuperseded and leaves the state
// untouched. A failed resolution moves the context to invalid and returns the
// resolver's error. The cache's current-tenant keys follow every committed
// change and nothing else.
func (c *TenantContext) LoadTenant(ctx context.Context, slug string) (domain.Tenant, error) {
	c.mu.Lock()
	if c.state == domain.StateValid && c.slug == slug && c.tenant != nil {
		t := c.tenant.Clone()
		c.mu.Unlock()
		return t, nil
	}
	if err := c.transitionLocked(ctx, domain.EventLoad); err != nil {
		c.mu.Unlock()
		return domain.Tenant{}, err
	}
	c.token++
	token := c.token
	c.slug = slug
	c.tenant = nil
	c.err = nil
	c.commitLocked()
	c.mu.Unlock()
	c.notify()

	t, err := c.resolver.Resolve(ctx, slug)

	c.mu.Lock()
	if token != c.token {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded tenant resolution", "slug", slug)
		return domain.Tenant{}, domain.ErrSuperseded
	}
	if err != nil {
		if terr := c.transitionLocked(ctx, domain.EventFailed); terr != nil {
			c.mu.Unlock()
			return domain.Tenant{}, terr
		}
		c.err = err
		c.commitLocked()
		c.cache.ClearCurrent()
		c.mu.Unlock()
		c.notify()
		return domain.Tenant{}, err
	}
	if terr := c.transitionLocked(ctx, domain.EventResolved); terr != nil {
		c.mu.Unlock()
		return domain.Tenant{}, terr
	}
	bound := t.Clone()
	c.tenant = &bound
	c.commitLocked()
	c.cache.SetCurrent(t.ID, slug)
	c.mu.Unlock()
	c.notify()
	return t, nil
}

// ClearTenant unbinds the context. Any resolution in flight is discarded. The
// cache's current-tenant keys are cleared; cached tenant entries are kept.
func (c *TenantContext) ClearTenant() {
	c.mu.Lock()
	if err := c.transitionLocked(context.Background(), domain.EventClear); err != nil {
		c.mu.Unlock()
		c.logger.Error("clearing tenant", "error", err)
		return
	}
	c.token++
	c.slug = ""
	c.tenant = nil
	c.err = nil
	c.commitLocked()
	c.cache.ClearCurrent()
	c.mu.Unlock()
	c.notify()
}

// UpdateSettings shallow-merges patch into the bound tenant's settings. The
// change is local to this context; persisting it is the caller's concern.
func (c *TenantContext) UpdateSettings(patch domain.SettingsPatch) error {
	c.mu.Lock()
	if c.state != domain.StateValid || c.tenant == nil {
		c.mu.Unlock()
		return domain.ErrTenantNotInitialized
	}
	updated := c.tenant.Clone()
	updated.Settings = updated.Settings.Apply(patch)
	c.tenant = &updated
	c.commitLocked()
	c.mu.Unlock()
	c.notify()
	return nil
}

// SyncRoute follows navigation: a tenant-scoped path loads its slug, any
// other path clears the binding.
func (c *TenantContext) SyncRoute(ctx context.Context, path string) error {
	slug, ok := c.matcher.Match(path)
	if !ok {
		c.ClearTenant()
		return nil
	}
	_, err := c.LoadTenant(ctx, slug)
	return err
}

// --- Accessors ---

// State returns a snapshot of the binding.
func (c *TenantContext) State() ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// TenantID returns the bound tenant id, or "" unless the context is valid.
func (c *TenantContext) TenantID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StateValid || c.tenant == nil {
		return ""
	}
	return c.tenant.ID
}

// IsValidTenant reports whether a tenant is bound.
func (c *TenantContext) IsValidTenant() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == domain.StateValid
}

// Subscribe registers fn to receive the state after every committed change.
// Deliveries are serialized and never go backwards. fn must not call
// LoadTenant, ClearTenant, UpdateSettings or SyncRoute.
func (c *TenantContext) Subscribe(fn func(ContextState)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.watchers = append(c.watchers, watcher{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, w := range c.watchers {
			if w.id == id {
				c.watchers = append(c.watchers[:i:i], c.watchers[i+1:]...)
				return
			}
		}
	}
}

// --- Internals ---

func (c *TenantContext) transitionLocked(ctx context.Context, event domain.Event) error {
	next, err := c.validator.Apply(ctx, c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *TenantContext) commitLocked() {
	c.version++
}

func (c *TenantContext) snapshotLocked() ContextState {
	s := ContextState{
		Status:  c.state,
		Slug:    c.slug,
		Err:     c.err,
		Version: c.version,
	}
	if c.tenant != nil {
		t := c.tenant.Clone()
		s.Tenant = &t
		s.TenantID = t.ID
	}
	return s
}

// notify delivers the current state to every watcher, unless a newer or equal
// version was already delivered.
func (c *TenantContext) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	snap := c.snapshotLocked()
	watchers := append([]watcher(nil), c.watchers...)
	c.mu.Unlock()

	if snap.Version <= c.delivered {
		return
	}
	c.delivered = snap.Version
	for _, w := range watchers {
		w.fn(snap)
	}
}
