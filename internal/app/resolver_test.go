package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/neomorfeo/barberiq/internal/adapter/memory"
	"github.com/neomorfeo/barberiq/internal/app"
	"github.com/neomorfeo/barberiq/internal/domain"
)

func newTestResolver(dir *mockDirectory) (*app.Resolver, *app.TenantCache) {
	cache := app.NewTenantCache(memory.NewStorage(), app.WithCacheLogger(discardLogger))
	return app.NewResolver(dir, cache, app.WithResolverLogger(discardLogger)), cache
}

func TestResolver_Resolve(t *testing.T) {
	dir := newMockDirectory(tenantFixture("bb-1", "barbearia-alpha"))
	r, cache := newTestResolver(dir)

	got, err := r.Resolve(context.Background(), "barbearia-alpha")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != "bb-1" {
		t.Errorf("ID = %q, want bb-1", got.ID)
	}
	if _, ok := cache.Get("barbearia-alpha"); !ok {
		t.Error("expected resolved tenant to be written through to the cache")
	}
}

func TestResolver_CacheHitSkipsDirectory(t *testing.T) {
	dir := newMockDirectory(tenantFixture("bb-1", "barbearia-alpha"))
	r, _ := newTestResolver(dir)
	ctx := context.Background()

	for range 3 {
		if _, err := r.Resolve(ctx, "barbearia-alpha"); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if n := dir.calls.Load(); n != 1 {
		t.Errorf("directory called %d times, want 1", n)
	}
}

func TestResolver_InvalidSlugNeverReachesDirectory(t *testing.T) {
	dir := newMockDirectory()
	r, _ := newTestResolver(dir)

	for _, slug := range []string{"", "ab", "Abc-123", "a--b", "-abc", "abc-"} {
		_, err := r.Resolve(context.Background(), slug)
		var fe *domain.SlugFormatError
		if !errors.As(err, &fe) {
			t.Errorf("Resolve(%q) error = %v, want *SlugFormatError", slug, err)
		}
	}
	if n := dir.calls.Load(); n != 0 {
		t.Errorf("directory called %d times, want 0", n)
	}
}

func TestResolver_NotFound(t *testing.T) {
	r, cache := newTestResolver(newMockDirectory())

	_, err := r.Resolve(context.Background(), "missing-shop")
	if !errors.Is(err, domain.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
	var re *domain.ResolutionError
	if errors.As(err, &re) {
		t.Error("not-found must not be reported as a resolution failure")
	}
	if _, ok := cache.Get("missing-shop"); ok {
		t.Error("not-found must not be cached")
	}
}

func TestResolver_TransportFailure(t *testing.T) {
	dir := newMockDirectory(tenantFixture("bb-1", "barbearia-alpha"))
	cause := errors.New("connection refused")
	dir.setErr(cause)
	r, _ := newTestResolver(dir)

	_, err := r.Resolve(context.Background(), "barbearia-alpha")
	var re *domain.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ResolutionError, got %T: %v", err, err)
	}
	if re.Slug != "barbearia-alpha" {
		t.Errorf("Slug = %q", re.Slug)
	}
	if !errors.Is(err, cause) {
		t.Error("expected resolution error to carry its cause")
	}
	if domain.IsNotFound(err) {
		t.Error("transport failure must not look like not-found")
	}
}

func TestResolver_EmptyIDIsFailure(t *testing.T) {
	r, _ := newTestResolver(newMockDirectory(domain.Tenant{Slug: "no-id-shop"}))

	_, err := r.Resolve(context.Background(), "no-id-shop")
	var re *domain.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ResolutionError, got %v", err)
	}
}

func TestResolver_ConcurrentCallsShareLookup(t *testing.T) {
	dir := newMockDirectory(tenantFixture("bb-1", "barbearia-alpha"))
	gate := dir.gate("barbearia-alpha")
	r, _ := newTestResolver(dir)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), "barbearia-alpha")
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Resolve: %v", err)
		}
	}
	if n := dir.calls.Load(); n != 1 {
		t.Errorf("directory called %d times, want 1", n)
	}
}

func TestResolver_AbandonedCallerDoesNotFailJoinedCaller(t *testing.T) {
	dir := newMockDirectory(tenantFixture("bb-1", "barbearia-alpha"))
	gate := dir.gate("barbearia-alpha")
	r, _ := newTestResolver(dir)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(firstCtx, "barbearia-alpha")
		firstErr <- err
	}()
	waitFor(t, func() bool { return dir.calls.Load() == 1 })

	type result struct {
		tenant domain.Tenant
		err    error
	}
	second := make(chan result, 1)
	go func() {
		tenant, err := r.Resolve(context.Background(), "barbearia-alpha")
		second <- result{tenant, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("first caller error = %v, want context.Canceled", err)
	}

	close(gate)
	got := <-second
	if got.err != nil {
		t.Fatalf("joined caller: %v", got.err)
	}
	if got.tenant.ID != "bb-1" {
		t.Errorf("ID = %q, want bb-1", got.tenant.ID)
	}
	if n := dir.calls.Load(); n != 1 {
		t.Errorf("directory called %d times, want 1", n)
	}
}

func TestResolver_LookupLeavesCurrentKeys(t *testing.T) {
	dir := newMockDirectory(tenantFixture("bb-1", "barbearia-alpha"))
	r, cache := newTestResolver(dir)

	if _, err := r.Resolve(context.Background(), "barbearia-alpha"); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Get("barbearia-alpha"); !ok {
		t.Error("expected the entry cached")
	}
	if _, ok := cache.CurrentTenantID(); ok {
		t.Error("a lookup alone must not mark the tenant current")
	}
}

func TestResolver_CheckSlugAvailability(t *testing.T) {
	dir := newMockDirectory(tenantFixture("bb-1", "barbearia-alpha"))
	r, _ := newTestResolver(dir)
	ctx := context.Background()

	res, err := r.CheckSlugAvailability(ctx, "barbearia-alpha")
	if err != nil || res.Available {
		t.Errorf("taken slug: got (%+v, %v)", res, err)
	}

	res, err = r.CheckSlugAvailability(ctx, "barbearia-nova")
	if err != nil || !res.Available {
		t.Errorf("free slug: got (%+v, %v)", res, err)
	}

	res, err = r.CheckSlugAvailability(ctx, "ab")
	if err != nil {
		t.Fatalf("malformed slug: %v", err)
	}
	if res.Available || res.Message != "slug must be between 3 and 50 characters" {
		t.Errorf("malformed slug: got %+v", res)
	}
	if n := dir.checks.Load(); n != 2 {
		t.Errorf("directory checked %d times, want 2", n)
	}
}
