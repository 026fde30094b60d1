package cartstore

import (
	"testing"

	"github.com/google/uuid"
)

func TestVariantSelection(t *testing.T) {
	vs := NewVariantSelection()
	productA := uuid.New()
	productB := uuid.New()

	if got := vs.GetSelected(productA, 0); got != 0 {
		t.Fatalf("expected fallback 0, got %d", got)
	}

	vs.SetSelected(productA, 2)
	if got := vs.GetSelected(productA, 0); got != 2 {
		t.Fatalf("expected selection 2, got %d", got)
	}
	// other products keep their fallback
	if got := vs.GetSelected(productB, 1); got != 1 {
		t.Fatalf("expected fallback 1 for unselected product, got %d", got)
	}

	vs.SetSelected(productA, 0)
	if got := vs.GetSelected(productA, 3); got != 0 {
		t.Fatalf("an explicit zero selection must win over the fallback, got %d", got)
	}
}
