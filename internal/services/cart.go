package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rivermart/storefront-backend/internal/apierr"
	"github.com/rivermart/storefront-backend/internal/logger"
	"github.com/rivermart/storefront-backend/internal/repos"
	"github.com/rivermart/storefront-backend/internal/requestdata"
	"github.com/rivermart/storefront-backend/internal/types"
)

// CartPagePath is the render path invalidated after every cart mutation.
const CartPagePath = "/cart"

// CartLightItem is the cart fetch projection: identifiers and quantity only,
// no joined display fields. The client sync fills placeholders for the rest.
type CartLightItem struct {
	ID               uuid.UUID `json:"id"`
	ProductVariantID uuid.UUID `json:"product_variant_id"`
	Quantity         int       `json:"quantity"`
}

// CartWithItems is what GetOrCreateCart returns: the cart row plus its light
// items. Nil for guests (guest carts are client-local only).
type CartWithItems struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []CartLightItem `json:"items"`
}

// CartItemDetail joins a line item with its variant and product for the cart
// page render.
type CartItemDetail struct {
	ID       uuid.UUID            `json:"id"`
	Quantity int                  `json:"quantity"`
	Variant  types.ProductVariant `json:"variant"`
}

type CartDetails struct {
	ID    uuid.UUID        `json:"id"`
	Items []CartItemDetail `json:"items"`
}

// GuestCartItem is one locally held line a client submits for migration
// after signing in.
type GuestCartItem struct {
	ProductVariantID uuid.UUID `json:"product_variant_id"`
	Quantity         int       `json:"quantity"`
}

// CartService is the authoritative mutation/query API over the persisted
// cart. Every operation resolves identity from the request context; mutating
// operations reject guests, reads degrade to empty results.
type CartService interface {
	GetOrCreateCart(ctx context.Context) (*CartWithItems, error)
	GetCartWithDetails(ctx context.Context) (*CartDetails, error)
	AddToCart(ctx context.Context, variantID uuid.UUID, quantity int) error
	UpdateCartItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	RemoveFromCart(ctx context.Context, itemID uuid.UUID) error
	ClearCart(ctx context.Context) error
	GetCartItemCount(ctx context.Context) (int, error)
	MigrateGuestCart(ctx context.Context, items []GuestCartItem) (bool, error)
}

type cartService struct {
	db          *gorm.DB
	log         *logger.Logger
	cartRepo    repos.CartRepo
	itemRepo    repos.CartItemRepo
	variantRepo repos.VariantRepo
	revalidator Revalidator
}

func NewCartService(db *gorm.DB, baseLog *logger.Logger, cartRepo repos.CartRepo, itemRepo repos.CartItemRepo, variantRepo repos.VariantRepo, revalidator Revalidator) CartService {
	return &cartService{
		db:          db,
		log:         baseLog.With("service", "CartService"),
		cartRepo:    cartRepo,
		itemRepo:    itemRepo,
		variantRepo: variantRepo,
		revalidator: revalidator,
	}
}

// GetOrCreateCart returns the caller's cart with its light items, creating
// the cart lazily. Guests get nil: their cart lives only in the client store.
// Persistence failures are logged and degrade to nil rather than failing the
// read.
func (s *cartService) GetOrCreateCart(ctx context.Context) (*CartWithItems, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, nil
	}

	var out *CartWithItems
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.GetOrCreate(ctx, tx, userID)
		if err != nil {
			return err
		}
		items, err := s.itemRepo.ListByCartID(ctx, tx, cart.ID)
		if err != nil {
			return err
		}
		light := make([]CartLightItem, 0, len(items))
		for _, it := range items {
			light = append(light, CartLightItem{
				ID:               it.ID,
				ProductVariantID: it.ProductVariantID,
				Quantity:         it.Quantity,
			})
		}
		out = &CartWithItems{
			ID:        cart.ID,
			UserID:    cart.UserID,
			CreatedAt: cart.CreatedAt,
			Items:     light,
		}
		return nil
	})
	if err != nil {
		s.log.Error("getOrCreateCart failed", "user_id", userID, "error", err)
		return nil, nil
	}
	return out, nil
}

// GetCartWithDetails returns the joined projection (variant + product +
// pricing) used when the cart page is rendered server-side.
func (s *cartService) GetCartWithDetails(ctx context.Context) (*CartDetails, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, nil
	}

	cart, err := s.cartRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		s.log.Error("getCartWithDetails failed", "user_id", userID, "error", err)
		return nil, nil
	}
	if cart == nil {
		return nil, nil
	}

	items, variants, err := s.itemRepo.ListDetailedByCartID(ctx, nil, cart.ID)
	if err != nil {
		s.log.Error("getCartWithDetails failed", "user_id", userID, "error", err)
		return nil, nil
	}

	byID := make(map[uuid.UUID]*types.ProductVariant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}

	details := make([]CartItemDetail, 0, len(items))
	for _, it := range items {
		v := byID[it.ProductVariantID]
		if v == nil {
			// variant vanished from the catalog; keep the line out of the
			// detailed view, sync will reconcile
			continue
		}
		details = append(details, CartItemDetail{ID: it.ID, Quantity: it.Quantity, Variant: *v})
	}
	return &CartDetails{ID: cart.ID, Items: details}, nil
}

// AddToCart merges the requested quantity into any existing line for the
// variant, or inserts a new line. Safe to call repeatedly for one variant:
// the upsert against the (cart_id, product_variant_id) unique index never
// yields two rows.
func (s *cartService) AddToCart(ctx context.Context, variantID uuid.UUID, quantity int) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return apierr.Unauthenticated(fmt.Errorf("must be authenticated to add items to cart"))
	}
	if quantity < 1 {
		quantity = 1
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		exists, err := s.variantRepo.Exists(ctx, tx, variantID)
		if err != nil {
			return err
		}
		if !exists {
			return apierr.NotFound(fmt.Errorf("product variant %s does not exist", variantID))
		}

		cart, err := s.cartRepo.GetOrCreate(ctx, tx, userID)
		if err != nil {
			return err
		}
		return s.itemRepo.UpsertAdd(ctx, tx, &types.CartItem{
			CartID:           cart.ID,
			ProductVariantID: variantID,
			Quantity:         quantity,
		})
	})
	if err != nil {
		s.log.Error("addToCart failed", "user_id", userID, "variant_id", variantID, "error", err)
		return wrapPersistence(err)
	}

	s.revalidator.Revalidate(ctx, CartPagePath)
	return nil
}

// UpdateCartItemQuantity sets an absolute quantity. Zero or below delegates
// to removal. The update is scoped to the caller's own cart.
func (s *cartService) UpdateCartItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, itemID)
	}

	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return apierr.Unauthenticated(fmt.Errorf("must be authenticated to update cart"))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return apierr.NotFound(fmt.Errorf("cart item %s not found", itemID))
		}
		affected, err := s.itemRepo.SetQuantity(ctx, tx, cart.ID, itemID, quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apierr.NotFound(fmt.Errorf("cart item %s not found", itemID))
		}
		return nil
	})
	if err != nil {
		s.log.Error("updateCartItemQuantity failed", "user_id", userID, "item_id", itemID, "error", err)
		return wrapPersistence(err)
	}

	s.revalidator.Revalidate(ctx, CartPagePath)
	return nil
}

// RemoveFromCart deletes the line, scoped to the caller's own cart. Removing
// an item that is already gone is not an error.
func (s *cartService) RemoveFromCart(ctx context.Context, itemID uuid.UUID) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return apierr.Unauthenticated(fmt.Errorf("must be authenticated to remove items from cart"))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return nil
		}
		return s.itemRepo.Delete(ctx, tx, cart.ID, itemID)
	})
	if err != nil {
		s.log.Error("removeFromCart failed", "user_id", userID, "item_id", itemID, "error", err)
		return wrapPersistence(err)
	}

	s.revalidator.Revalidate(ctx, CartPagePath)
	return nil
}

// ClearCart deletes every line of the caller's cart.
func (s *cartService) ClearCart(ctx context.Context) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return apierr.Unauthenticated(fmt.Errorf("must be authenticated to clear cart"))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return nil
		}
		return s.itemRepo.DeleteByCartID(ctx, tx, cart.ID)
	})
	if err != nil {
		s.log.Error("clearCart failed", "user_id", userID, "error", err)
		return wrapPersistence(err)
	}

	s.revalidator.Revalidate(ctx, CartPagePath)
	return nil
}

// GetCartItemCount sums quantities across the caller's cart. Guests, missing
// carts, and persistence failures all read as zero.
func (s *cartService) GetCartItemCount(ctx context.Context) (int, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return 0, nil
	}

	cart, err := s.cartRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		s.log.Error("getCartItemCount failed", "user_id", userID, "error", err)
		return 0, nil
	}
	if cart == nil {
		return 0, nil
	}

	total, err := s.itemRepo.SumQuantities(ctx, nil, cart.ID)
	if err != nil {
		s.log.Error("getCartItemCount failed", "user_id", userID, "error", err)
		return 0, nil
	}
	return total, nil
}

// MigrateGuestCart merges a client's local guest lines into the caller's
// persisted cart using the same accumulation rule as AddToCart. Reports
// non-success (without error) for guests and empty lists. Runs in one
// transaction so a partial migration never survives a failure.
func (s *cartService) MigrateGuestCart(ctx context.Context, items []GuestCartItem) (bool, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil || len(items) == 0 {
		return false, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.GetOrCreate(ctx, tx, userID)
		if err != nil {
			return err
		}
		for _, item := range items {
			qty := item.Quantity
			if qty < 1 {
				qty = 1
			}
			if err := s.itemRepo.UpsertAdd(ctx, tx, &types.CartItem{
				CartID:           cart.ID,
				ProductVariantID: item.ProductVariantID,
				Quantity:         qty,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("migrateGuestCart failed", "user_id", userID, "items", len(items), "error", err)
		return false, nil
	}

	s.revalidator.Revalidate(ctx, CartPagePath)
	return true, nil
}

func wrapPersistence(err error) error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apierr.Persistence(err)
}
