package memory_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/neomorfeo/barberiq/internal/adapter/memory"
)

func TestStorage_RoundTrip(t *testing.T) {
	s := memory.NewStorage()

	buf := []byte("alpha")
	_ = s.Put("current_tenant_slug", buf)
	buf[0] = 'X' // caller's slice must not alias the stored value

	got, ok, err := s.Get("current_tenant_slug")
	if err != nil || !ok {
		t.Fatalf("Get = (%q, %v, %v)", got, ok, err)
	}
	if string(got) != "alpha" {
		t.Errorf("got %q, want %q", got, "alpha")
	}

	_ = s.Delete("current_tenant_slug")
	if _, ok, _ := s.Get("current_tenant_slug"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestStorage_KeysSorted(t *testing.T) {
	s := memory.NewStorage()
	for _, k := range []string{"p:c", "p:a", "q:z", "p:b"} {
		_ = s.Put(k, nil)
	}

	keys, _ := s.Keys("p:")
	if diff := cmp.Diff([]string{"p:a", "p:b", "p:c"}, keys); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
}
