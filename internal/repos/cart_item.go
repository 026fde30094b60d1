package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rivermart/storefront-backend/internal/logger"
	"github.com/rivermart/storefront-backend/internal/types"
)

type CartItemRepo interface {
	ListByCartID(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) ([]*types.CartItem, error)
	ListDetailedByCartID(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) ([]*types.CartItem, []*types.ProductVariant, error)
	GetByID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*types.CartItem, error)
	UpsertAdd(ctx context.Context, tx *gorm.DB, item *types.CartItem) error
	SetQuantity(ctx context.Context, tx *gorm.DB, cartID, itemID uuid.UUID, quantity int) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, cartID, itemID uuid.UUID) error
	DeleteByCartID(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
	SumQuantities(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (int, error)
}

type cartItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartItemRepo(db *gorm.DB, baseLog *logger.Logger) CartItemRepo {
	return &cartItemRepo{db: db, log: baseLog.With("repo", "CartItemRepo")}
}

func (cir *cartItemRepo) ListByCartID(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) ([]*types.CartItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = cir.db
	}

	var items []*types.CartItem
	if err := transaction.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListDetailedByCartID loads the cart's items together with their variants
// (product preloaded) so the cart page can render full display fields.
func (cir *cartItemRepo) ListDetailedByCartID(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) ([]*types.CartItem, []*types.ProductVariant, error) {
	transaction := tx
	if transaction == nil {
		transaction = cir.db
	}

	items, err := cir.ListByCartID(ctx, tx, cartID)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return items, nil, nil
	}

	variantIDs := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		variantIDs = append(variantIDs, it.ProductVariantID)
	}

	var variants []*types.ProductVariant
	if err := transaction.WithContext(ctx).
		Preload("Product").
		Where("id IN ?", variantIDs).
		Find(&variants).Error; err != nil {
		return nil, nil, err
	}
	return items, variants, nil
}

func (cir *cartItemRepo) GetByID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*types.CartItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = cir.db
	}

	var item types.CartItem
	err := transaction.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// UpsertAdd inserts the item or, when a row for (cart_id, product_variant_id)
// already exists, accumulates the quantity into it. Single statement against
// the composite unique index, so two concurrent adds for the same variant
// end up as one row with the summed quantity.
func (cir *cartItemRepo) UpsertAdd(ctx context.Context, tx *gorm.DB, item *types.CartItem) error {
	transaction := tx
	if transaction == nil {
		transaction = cir.db
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_variant_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_item.quantity + excluded.quantity"),
			}),
		}).
		Create(item).Error
}

// SetQuantity sets an absolute quantity, scoped to the owning cart. Returns
// the number of rows touched so callers can distinguish a missing or foreign
// item.
func (cir *cartItemRepo) SetQuantity(ctx context.Context, tx *gorm.DB, cartID, itemID uuid.UUID, quantity int) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cir.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (cir *cartItemRepo) Delete(ctx context.Context, tx *gorm.DB, cartID, itemID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cir.db
	}

	return transaction.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&types.CartItem{}).Error
}

func (cir *cartItemRepo) DeleteByCartID(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cir.db
	}

	return transaction.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&types.CartItem{}).Error
}

func (cir *cartItemRepo) SumQuantities(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = cir.db
	}

	var total int64
	if err := transaction.WithContext(ctx).
		Model(&types.CartItem{}).
		Where("cart_id = ?", cartID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}
