package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "gastos.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestLatestWithoutSnapshot(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Latest(context.Background(), 1, KindDashboard)
	if !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSaveAndLatest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 1, KindDashboard, []byte(`{"total":100}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	payload, at, err := store.Latest(ctx, 1, KindDashboard)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if string(payload) != `{"total":100}` {
		t.Errorf("payload = %s", payload)
	}
	if at.IsZero() {
		t.Error("fetched_at should be set")
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 1, KindCards, []byte(`"old"`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, 1, KindCards, []byte(`"new"`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	payload, _, err := store.Latest(ctx, 1, KindCards)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if string(payload) != `"new"` {
		t.Errorf("payload = %s, want \"new\"", payload)
	}
}

func TestSnapshotsAreScopedByTenantAndKind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 1, KindDashboard, []byte(`"t1"`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, 2, KindDashboard, []byte(`"t2"`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, 1, KindDebit, []byte(`"debit"`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	payload, _, err := store.Latest(ctx, 2, KindDashboard)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if string(payload) != `"t2"` {
		t.Errorf("tenant 2 payload = %s", payload)
	}

	payload, _, err = store.Latest(ctx, 1, KindDebit)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if string(payload) != `"debit"` {
		t.Errorf("kind debit payload = %s", payload)
	}
}

func TestPurgeTenant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, 1, KindDashboard, []byte(`"a"`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, 2, KindDashboard, []byte(`"b"`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.PurgeTenant(ctx, 1); err != nil {
		t.Fatalf("PurgeTenant: %v", err)
	}

	if _, _, err := store.Latest(ctx, 1, KindDashboard); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected tenant 1 snapshots to be gone, got %v", err)
	}
	if _, _, err := store.Latest(ctx, 2, KindDashboard); err != nil {
		t.Errorf("tenant 2 snapshot should survive, got %v", err)
	}
}
