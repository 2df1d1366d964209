package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/barberiq/internal/domain"
)

// Repositories are the per-collection backends of a session.
type Repositories struct {
	Appointments domain.Repository[domain.Appointment]
	Barbers      domain.Repository[domain.Barber]
	Comments     domain.Repository[domain.Comment]
	Services     domain.Repository[domain.Service]
}

// SessionConfig holds the collaborators of a Session.
type SessionConfig struct {
	Directory  domain.TenantDirectory
	Repos      Repositories
	Storage    domain.Storage
	QueryCache domain.QueryCache
	Validator  domain.TransitionValidator
	TenantTTL  time.Duration
	Routes     *domain.RouteMatcher // nil uses domain.DefaultRouteMatcher
	Logger     *slog.Logger
}

// Session is one client's tenant state: the tenant cache, the resolver, the
// tenant context and the four tenant-scoped stores. The stores follow the
// context: they are bound while a tenant is valid and released otherwise.
type Session struct {
	Cache    *TenantCache
	Resolver *Resolver
	Context  *TenantContext
	Results  *ResultCache

	Appointments *AppointmentStore
	Barbers      *BarberStore
	Comments     *CommentStore
	Services     *ServiceStore

	logger      *slog.Logger
	unsubscribe func()
}

// NewSession wires a session and drops expired tenant cache entries.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cache := NewTenantCache(cfg.Storage, WithDefaultTTL(cfg.TenantTTL), WithCacheLogger(logger))
	if n := cache.CleanExpired(); n > 0 {
		logger.Info("removed expired tenant cache entries", "count", n)
	}
	resolver := NewResolver(cfg.Directory, cache, WithResolverLogger(logger))

	ctxOpts := []ContextOption{WithContextLogger(logger)}
	if cfg.Routes != nil {
		ctxOpts = append(ctxOpts, WithRouteMatcher(*cfg.Routes))
	}
	tc := NewTenantContext(resolver, cache, cfg.Validator, ctxOpts...)
	results := NewResultCache(cfg.QueryCache, logger)

	s := &Session{
		Cache:        cache,
		Resolver:     resolver,
		Context:      tc,
		Results:      results,
		Appointments: NewAppointmentStore(cfg.Repos.Appointments, results, logger),
		Barbers:      NewBarberStore(cfg.Repos.Barbers, results, logger),
		Comments:     NewCommentStore(cfg.Repos.Comments, results, logger),
		Services:     NewServiceStore(cfg.Repos.Services, results, logger),
		logger:       logger,
	}
	s.unsubscribe = tc.Subscribe(s.follow)
	return s
}

// follow binds or releases the stores after a tenant context change.
func (s *Session) follow(st ContextState) {
	ctx := context.Background()
	if st.IsValidTenant() {
		s.Appointments.InitializeTenant(ctx, st.TenantID)
		s.Barbers.InitializeTenant(ctx, st.TenantID)
		s.Comments.InitializeTenant(ctx, st.TenantID)
		s.Services.InitializeTenant(ctx, st.TenantID)
		return
	}
	s.Appointments.Release(ctx)
	s.Barbers.Release(ctx)
	s.Comments.Release(ctx)
	s.Services.Release(ctx)
}

// Refresh fetches every collection of the bound tenant concurrently.
func (s *Session) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.Appointments.FetchAll(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.Barbers.FetchAll(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.Comments.FetchAll(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.Services.FetchAll(ctx)
		return err
	})
	return g.Wait()
}

// Close detaches the stores from the tenant context.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}
