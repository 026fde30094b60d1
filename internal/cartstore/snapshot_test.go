package cartstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/rivermart/storefront-backend/internal/logger"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart-storage.json")

	store := NewStore(newFakeCartAPI(), logger.NewNop())
	store.SetItems([]ClientCartItem{
		{ID: uuid.New(), ProductVariantID: uuid.New(), Name: "A", Price: 10, Quantity: 2, Detailed: true},
		{ID: uuid.New(), ProductVariantID: uuid.New(), Name: "B", Price: 5, Quantity: 1, Detailed: true},
	})
	if err := store.SaveSnapshot(path); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	restored := NewStore(newFakeCartAPI(), logger.NewNop())
	if err := restored.LoadSnapshot(path); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if restored.ItemCount() != 3 {
		t.Fatalf("expected count 3 after restore, got %d", restored.ItemCount())
	}
	if restored.Total() != 25 {
		t.Fatalf("expected total 25 after restore, got %v", restored.Total())
	}
	items := restored.Items()
	if items[0].Name != "A" || items[1].Name != "B" {
		t.Fatalf("display order not preserved: %+v", items)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	store := NewStore(newFakeCartAPI(), logger.NewNop())
	if err := store.LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err != nil {
		t.Fatalf("missing snapshot must not be an error: %v", err)
	}
	if store.ItemCount() != 0 {
		t.Fatalf("store should stay empty, count %d", store.ItemCount())
	}
}

func TestLoadSnapshotRecomputesTotal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart-storage.json")
	// a tampered total in the file must not survive: total is derived
	content := `{"items":[{"id":"` + uuid.New().String() + `","product_variant_id":"` + uuid.New().String() + `","name":"A","price":10,"quantity":2,"detailed":true}],"total":9999}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	store := NewStore(newFakeCartAPI(), logger.NewNop())
	if err := store.LoadSnapshot(path); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if store.Total() != 20 {
		t.Fatalf("total must be recomputed from items, got %v", store.Total())
	}
}
