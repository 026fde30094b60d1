package cartstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rivermart/storefront-backend/internal/logger"
	"github.com/rivermart/storefront-backend/internal/services"
)

// ClientCartItem is the client's denormalized projection of a cart line. It
// carries cached display fields next to the authoritative identifiers and
// quantity. Detailed marks whether those display fields are real or
// placeholders awaiting hydration.
type ClientCartItem struct {
	ID               uuid.UUID `json:"id"`
	ProductVariantID uuid.UUID `json:"product_variant_id"`
	Name             string    `json:"name"`
	Price            float64   `json:"price"`
	Quantity         int       `json:"quantity"`
	Image            string    `json:"image,omitempty"`
	Color            string    `json:"color,omitempty"`
	Size             string    `json:"size,omitempty"`
	Detailed         bool      `json:"detailed"`
}

// DisplayFields is what the product page knows about a variant when the user
// hits "add to cart".
type DisplayFields struct {
	Name  string
	Price float64
	Image string
	Color string
	Size  string
}

// CartAPI is the server actions contract the store propagates mutations to.
// services.CartService satisfies it in-process; a transport client satisfies
// it across the wire.
type CartAPI interface {
	GetOrCreateCart(ctx context.Context) (*services.CartWithItems, error)
	AddToCart(ctx context.Context, variantID uuid.UUID, quantity int) error
	UpdateCartItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	RemoveFromCart(ctx context.Context, itemID uuid.UUID) error
	ClearCart(ctx context.Context) error
	MigrateGuestCart(ctx context.Context, items []services.GuestCartItem) (bool, error)
}

// Store is the client-side cart cache. Every mutation applies locally first
// so the UI never waits on the network, then propagates to the server. When
// the server call fails the local mutation is kept: a flaky network degrades
// to a possibly-stale cart, never a blocked one. The sync service corrects
// drift afterwards.
type Store struct {
	mu      sync.Mutex
	log     *logger.Logger
	api     CartAPI
	items   []ClientCartItem
	total   float64
	loading bool
	seq     uint64
}

func NewStore(api CartAPI, baseLog *logger.Logger) *Store {
	return &Store{
		api: api,
		log: baseLog.With("store", "CartStore"),
	}
}

// Items returns a copy of the current item collection, in display order.
func (s *Store) Items() []ClientCartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ClientCartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Seq returns the local mutation sequence number. It advances on every
// optimistic mutation and lets the sync service detect that a fetched server
// snapshot went stale while in flight.
func (s *Store) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetItems replaces the collection wholesale and recomputes the total. Only
// the sync service calls this; it does not advance the mutation sequence.
func (s *Store) SetItems(items []ClientCartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(items)
}

// ReplaceIfSeq replaces the collection only when no local mutation happened
// since seq was observed. Returns false when the snapshot is stale.
func (s *Store) ReplaceIfSeq(seq uint64, items []ClientCartItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		return false
	}
	s.replaceLocked(items)
	return true
}

func (s *Store) replaceLocked(items []ClientCartItem) {
	s.items = make([]ClientCartItem, len(items))
	copy(s.items, items)
	s.recomputeTotalLocked()
}

// Total is derived, never set directly.
func (s *Store) recomputeTotalLocked() {
	total := 0.0
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	s.total = total
}

// ItemCount sums quantities across all items.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// AddItem optimistically appends a quantity-1 line for the variant, or
// increments the existing line, then propagates to the server. On server
// failure the local mutation is retained.
func (s *Store) AddItem(ctx context.Context, variantID uuid.UUID, fields DisplayFields) error {
	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ProductVariantID == variantID {
			s.items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, ClientCartItem{
			ID:               uuid.New(),
			ProductVariantID: variantID,
			Name:             fields.Name,
			Price:            fields.Price,
			Quantity:         1,
			Image:            fields.Image,
			Color:            fields.Color,
			Size:             fields.Size,
			Detailed:         true,
		})
	}
	s.recomputeTotalLocked()
	s.seq++
	s.mu.Unlock()

	s.SetLoading(true)
	defer s.SetLoading(false)
	if err := s.api.AddToCart(ctx, variantID, 1); err != nil {
		s.log.Warn("failed to add item on server, keeping local item", "variant_id", variantID, "error", err)
		return err
	}
	return nil
}

// UpdateQuantity optimistically sets an absolute quantity. Below 1 it
// delegates to RemoveItem.
func (s *Store) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, itemID)
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.recomputeTotalLocked()
	s.seq++
	s.mu.Unlock()

	s.SetLoading(true)
	defer s.SetLoading(false)
	if err := s.api.UpdateCartItemQuantity(ctx, itemID, quantity); err != nil {
		s.log.Warn("failed to update quantity on server, keeping local state", "item_id", itemID, "error", err)
		return err
	}
	return nil
}

// RemoveItem optimistically deletes the line. The local deletion is retained
// even when the server call fails.
func (s *Store) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.recomputeTotalLocked()
	s.seq++
	s.mu.Unlock()

	s.SetLoading(true)
	defer s.SetLoading(false)
	if err := s.api.RemoveFromCart(ctx, itemID); err != nil {
		s.log.Warn("failed to remove item on server, keeping local removal", "item_id", itemID, "error", err)
		return err
	}
	return nil
}

// ClearCart optimistically empties the collection.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	s.recomputeTotalLocked()
	s.seq++
	s.mu.Unlock()

	s.SetLoading(true)
	defer s.SetLoading(false)
	if err := s.api.ClearCart(ctx); err != nil {
		s.log.Warn("failed to clear cart on server, keeping local clear", "error", err)
		return err
	}
	return nil
}

// MigrateGuestCart sends the local guest lines to the server for merging
// into the authenticated user's cart. On success the local state is emptied
// (the items now live server-side); on failure it is left untouched so the
// items stay pending migration.
func (s *Store) MigrateGuestCart(ctx context.Context) error {
	s.mu.Lock()
	guestItems := make([]services.GuestCartItem, 0, len(s.items))
	for _, item := range s.items {
		guestItems = append(guestItems, services.GuestCartItem{
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
		})
	}
	s.mu.Unlock()

	if len(guestItems) == 0 {
		return nil
	}

	s.SetLoading(true)
	defer s.SetLoading(false)

	ok, err := s.api.MigrateGuestCart(ctx, guestItems)
	if err != nil {
		s.log.Warn("failed to migrate guest cart, keeping local items", "error", err)
		return err
	}
	if !ok {
		s.log.Warn("guest cart migration reported non-success, keeping local items")
		return nil
	}

	s.mu.Lock()
	s.items = nil
	s.recomputeTotalLocked()
	s.seq++
	s.mu.Unlock()
	return nil
}
