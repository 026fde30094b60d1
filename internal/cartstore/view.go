package cartstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/rivermart/storefront-backend/internal/logger"
	"github.com/rivermart/storefront-backend/internal/services"
)

// DefaultShipping is the fixed delivery and handling cost added to the
// subtotal.
const DefaultShipping = 2.00

// OrderSummary is the cart page's totals block. Subtotal only counts
// detailed items: a light item's price is unknown until hydration, so it
// contributes zero for the brief window between optimistic update and full
// resync.
type OrderSummary struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// Summarize computes the order summary over an item collection.
func Summarize(items []ClientCartItem, shipping float64) OrderSummary {
	subtotal := 0.0
	for _, item := range items {
		if !item.Detailed {
			continue
		}
		subtotal += item.Price * float64(item.Quantity)
	}
	return OrderSummary{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
	}
}

// DetailedAPI is the optional hydration contract: the cart page's joined
// fetch. Satisfied by services.CartService.
type DetailedAPI interface {
	GetCartWithDetails(ctx context.Context) (*services.CartDetails, error)
}

// CartView is the presentation layer over the store: it issues quantity and
// removal intents and triggers a resync after each one, so server-computed
// truth (merge results included) supersedes the optimistic guess.
type CartView struct {
	log      *logger.Logger
	store    *Store
	sync     *SyncService
	shipping float64
}

func NewCartView(store *Store, sync *SyncService, baseLog *logger.Logger, shipping float64) *CartView {
	if shipping <= 0 {
		shipping = DefaultShipping
	}
	return &CartView{
		log:      baseLog.With("view", "CartContent"),
		store:    store,
		sync:     sync,
		shipping: shipping,
	}
}

// ChangeQuantity blocks decrements below 1; removal happens only through
// RemoveItem. The resync runs regardless of the mutation's outcome.
func (v *CartView) ChangeQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return nil
	}
	if err := v.store.UpdateQuantity(ctx, itemID, quantity); err != nil {
		v.log.Warn("quantity update failed, resyncing anyway", "item_id", itemID, "error", err)
	}
	return v.sync.Resync(ctx)
}

func (v *CartView) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	if err := v.store.RemoveItem(ctx, itemID); err != nil {
		v.log.Warn("item removal failed, resyncing anyway", "item_id", itemID, "error", err)
	}
	return v.sync.Resync(ctx)
}

// Summary computes totals over the store's current items.
func (v *CartView) Summary() OrderSummary {
	return Summarize(v.store.Items(), v.shipping)
}

// Hydrate replaces the store with the fully joined projection when the API
// supports it. This is the "full navigation" path that turns light items
// back into detailed ones.
func (v *CartView) Hydrate(ctx context.Context, api DetailedAPI) error {
	details, err := api.GetCartWithDetails(ctx)
	if err != nil {
		return err
	}
	if details == nil {
		return nil
	}
	items := make([]ClientCartItem, 0, len(details.Items))
	for _, d := range details.Items {
		items = append(items, DetailedItem(d))
	}
	v.store.SetItems(items)
	return nil
}

// DetailedItem converts a joined server line into a detailed client item.
func DetailedItem(d services.CartItemDetail) ClientCartItem {
	item := ClientCartItem{
		ID:               d.ID,
		ProductVariantID: d.Variant.ID,
		Price:            d.Variant.EffectivePrice(),
		Quantity:         d.Quantity,
		Color:            d.Variant.Color,
		Size:             d.Variant.Size,
		Detailed:         true,
	}
	if d.Variant.Product != nil {
		item.Name = d.Variant.Product.Name
	}
	return item
}
