package tenant

import (
	"testing"

	"architect/internal/apperr"
	"architect/internal/model"
)

func TestRegistryLookupUnknownTenantIsNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("ghost")
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestRegistryLookupReturnsLoadedEntry(t *testing.T) {
	r := NewRegistry()
	r.snapshot.Store(&snapshot{byID: map[string]model.TenantEntry{
		"acme": {ID: "acme", Strategy: model.StrategyRLS},
	}})

	entry, err := r.Lookup("acme")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry.Strategy != model.StrategyRLS {
		t.Fatalf("expected rls strategy, got %v", entry.Strategy)
	}
}

func TestRegistrySnapshotSwapIsAtomic(t *testing.T) {
	r := NewRegistry()
	r.snapshot.Store(&snapshot{byID: map[string]model.TenantEntry{
		"a": {ID: "a", Strategy: model.StrategyRLS},
	}})
	captured := r.snapshot.Load()

	r.snapshot.Store(&snapshot{byID: map[string]model.TenantEntry{
		"b": {ID: "b", Strategy: model.StrategyRLS},
	}})

	if _, ok := captured.byID["a"]; !ok {
		t.Fatal("a request holding the old snapshot should still see the old entry")
	}
	if _, ok := r.snapshot.Load().byID["b"]; !ok {
		t.Fatal("a fresh load should see the new entry")
	}
}
