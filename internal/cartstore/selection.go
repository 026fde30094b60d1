package cartstore

import (
	"sync"

	"github.com/google/uuid"
)

// VariantSelection tracks which variant index is chosen per product while
// browsing. Session-scoped UI state, never persisted server-side, no
// correctness relationship to the cart beyond supplying the variant used at
// add-to-cart time.
type VariantSelection struct {
	mu       sync.Mutex
	selected map[uuid.UUID]int
}

func NewVariantSelection() *VariantSelection {
	return &VariantSelection{selected: make(map[uuid.UUID]int)}
}

func (vs *VariantSelection) SetSelected(productID uuid.UUID, index int) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.selected[productID] = index
}

// GetSelected returns the chosen index, or fallback when none was chosen.
func (vs *VariantSelection) GetSelected(productID uuid.UUID, fallback int) int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if idx, ok := vs.selected[productID]; ok {
		return idx
	}
	return fallback
}
