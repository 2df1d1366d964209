package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	adapter "github.com/neomorfeo/barberiq/internal/adapter/http"
	"github.com/neomorfeo/barberiq/internal/adapter/sqlite"
	"github.com/neomorfeo/barberiq/internal/backend"
	"github.com/neomorfeo/barberiq/internal/domain"
)

// noopPublisher is a no-op EventPublisher for tests.
type noopPublisher struct{}

func (p *noopPublisher) Publish(_ context.Context, _ domain.Change, _ domain.Tenant) error {
	return nil
}

// newTestServer creates a full-stack httptest.Server with SQLite in-memory.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	tenants := backend.NewTenantService(repo, &noopPublisher{})
	records := backend.NewRecordService(repo, sqlite.NewRecordRepository(repo.DB()), &noopPublisher{})

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("barberiq", "0.1.0"))
	adapter.Register(api, tenants, records)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

// doRequest performs an HTTP request with context (avoids noctx linter).
func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d (body: %s)", resp.StatusCode, want, body)
	}
}

// mustRegisterTenant registers a tenant via the API and returns its response.
func mustRegisterTenant(t *testing.T, srv *httptest.Server, name, slug, plan string) adapter.TenantResponse {
	t.Helper()

	body := fmt.Sprintf(`{"name":%q,"slug":%q,"planType":%q}`, name, slug, plan)
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/tenants", body)
	defer resp.Body.Close()

	expectStatus(t, resp, http.StatusOK)
	return decode[adapter.TenantResponse](t, resp)
}

// --- Register ---

func TestRegister(t *testing.T) {
	srv := newTestServer(t)
	tenant := mustRegisterTenant(t, srv, "Barbearia Alpha", "barbearia-alpha", "pro")

	if tenant.ID == "" {
		t.Error("ID should not be empty")
	}
	if tenant.Name != "Barbearia Alpha" {
		t.Errorf("Name = %q, want %q", tenant.Name, "Barbearia Alpha")
	}
	if tenant.Slug != "barbearia-alpha" {
		t.Errorf("Slug = %q, want %q", tenant.Slug, "barbearia-alpha")
	}
	if tenant.PlanType != "pro" {
		t.Errorf("PlanType = %q, want %q", tenant.PlanType, "pro")
	}
	if tenant.Settings.Theme.PrimaryColor == "" {
		t.Error("expected default settings")
	}
	if tenant.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
}

func TestRegister_DefaultsAndGeneratedSlug(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/tenants", `{"name":"Barbearia do João"}`)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	tenant := decode[adapter.TenantResponse](t, resp)
	if tenant.PlanType != "free" {
		t.Errorf("PlanType = %q, want %q", tenant.PlanType, "free")
	}
	if tenant.Slug != "barbearia-do-joao" {
		t.Errorf("Slug = %q, want %q", tenant.Slug, "barbearia-do-joao")
	}
}

func TestRegister_DuplicateSlug(t *testing.T) {
	srv := newTestServer(t)
	mustRegisterTenant(t, srv, "Alpha", "barbearia-alpha", "free")

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/tenants", `{"name":"Alpha 2","slug":"barbearia-alpha","planType":"pro"}`)
	defer resp.Body.Close()

	expectStatus(t, resp, http.StatusConflict)
}

func TestRegister_Invalid(t *testing.T) {
	srv := newTestServer(t)

	for name, body := range map[string]string{
		"invalid slug": `{"name":"Alpha","slug":"INVALID SLUG!"}`,
		"double hyph":  `{"name":"Alpha","slug":"a--b"}`,
		"missing name": `{"slug":"barbearia-alpha"}`,
		"unknown plan": `{"name":"Alpha","planType":"gold"}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/tenants", body)
			defer resp.Body.Close()
			expectStatus(t, resp, http.StatusUnprocessableEntity)
		})
	}
}

// --- Get ---

func TestGet(t *testing.T) {
	srv := newTestServer(t)
	created := mustRegisterTenant(t, srv, "Alpha", "barbearia-alpha", "pro")

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/"+created.ID, "")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	tenant := decode[adapter.TenantResponse](t, resp)
	if tenant.ID != created.ID {
		t.Errorf("ID = %q, want %q", tenant.ID, created.ID)
	}
}

func TestGet_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/nonexistent", "")
	defer resp.Body.Close()

	expectStatus(t, resp, http.StatusNotFound)
}

func TestGetBySlug(t *testing.T) {
	srv := newTestServer(t)
	created := mustRegisterTenant(t, srv, "Alpha", "barbearia-alpha", "free")

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/by-slug/barbearia-alpha", "")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	// The payload decodes straight into the domain type the client uses.
	tenant := decode[domain.Tenant](t, resp)
	if tenant.ID != created.ID || tenant.PlanType != domain.PlanFree {
		t.Errorf("tenant = %+v", tenant)
	}

	missing := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/by-slug/barbearia-beta", "")
	defer missing.Body.Close()
	expectStatus(t, missing, http.StatusNotFound)
}

func TestCheckSlug(t *testing.T) {
	srv := newTestServer(t)
	mustRegisterTenant(t, srv, "Alpha", "barbearia-alpha", "free")

	tests := []struct {
		slug      string
		available bool
	}{
		{"barbearia-alpha", false},
		{"barbearia-beta", true},
		{"ab", false},
	}
	for _, tt := range tests {
		resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/check-slug/"+tt.slug, "")
		expectStatus(t, resp, http.StatusOK)
		got := decode[domain.SlugAvailability](t, resp)
		resp.Body.Close()

		if got.Available != tt.available {
			t.Errorf("check-slug %q: available = %v, want %v", tt.slug, got.Available, tt.available)
		}
		if got.Message == "" {
			t.Errorf("check-slug %q: expected a message", tt.slug)
		}
	}
}

// --- List ---

func TestList(t *testing.T) {
	srv := newTestServer(t)
	mustRegisterTenant(t, srv, "Alpha", "barbearia-alpha", "free")
	mustRegisterTenant(t, srv, "Beta", "barbearia-beta", "pro")

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants", "")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	if tenants := decode[[]adapter.TenantResponse](t, resp); len(tenants) != 2 {
		t.Errorf("got %d tenants, want 2", len(tenants))
	}
}

func TestList_FilterByPlan(t *testing.T) {
	srv := newTestServer(t)
	mustRegisterTenant(t, srv, "Alpha", "barbearia-alpha", "free")
	mustRegisterTenant(t, srv, "Beta", "barbearia-beta", "pro")

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants?plan=pro", "")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	tenants := decode[[]adapter.TenantResponse](t, resp)
	if len(tenants) != 1 {
		t.Fatalf("got %d tenants, want 1", len(tenants))
	}
	if tenants[0].Slug != "barbearia-beta" {
		t.Errorf("Slug = %q, want %q", tenants[0].Slug, "barbearia-beta")
	}
}

// --- Settings ---

func TestUpdateSettings(t *testing.T) {
	srv := newTestServer(t)
	created := mustRegisterTenant(t, srv, "Alpha", "barbearia-alpha", "free")

	body := `{"contact":{"phone":"+55 11 4000-0000","whatsapp":"","email":"oi@alpha.com","address":"","instagram":"@alpha"}}`
	resp := doRequest(t, http.MethodPatch, srv.URL+"/api/v1/tenants/"+created.ID+"/settings", body)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	tenant := decode[adapter.TenantResponse](t, resp)
	if tenant.Settings.Contact.Email != "oi@alpha.com" {
		t.Errorf("Contact = %+v", tenant.Settings.Contact)
	}
	if tenant.Settings.Theme != created.Settings.Theme {
		t.Error("expected theme to be kept")
	}

	missing := doRequest(t, http.MethodPatch, srv.URL+"/api/v1/tenants/nonexistent/settings", `{}`)
	defer missing.Body.Close()
	expectStatus(t, missing, http.StatusNotFound)
}
