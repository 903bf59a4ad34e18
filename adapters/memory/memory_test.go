package memory

import (
	"testing"

	"github.com/estante-app/estante/core"
)

// Requirement: the memory store honors the credential store contract:
// baseline before any save, faithful round trip, baseline after clear.
func TestStore_Contract(t *testing.T) {
	store := New()

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.Equal(core.Identity{}) {
		t.Fatalf("fresh store not at baseline: %+v", got)
	}

	role := core.RoleReader
	uid := int64(1)
	id := core.Identity{Token: "tok", Role: &role, DisplayName: "Ana", UserID: &uid}
	if err := store.Save(id); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err = store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.Equal(id) {
		t.Fatalf("Load() = %+v, want %+v", got, id)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	got, _ = store.Load()
	if !got.Equal(core.Identity{}) {
		t.Fatalf("store not at baseline after Clear(): %+v", got)
	}
}
