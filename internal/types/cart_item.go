package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one line of a cart. The composite unique index on
// (cart_id, product_variant_id) makes merge-or-insert safe under concurrent
// adds from two sessions of the same user: the repo upserts against it
// instead of select-then-branch.
type CartItem struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CartID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_cart_variant;column:cart_id" json:"cart_id"`
	ProductVariantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_cart_variant;column:product_variant_id" json:"product_variant_id"`
	Quantity         int       `gorm:"not null;column:quantity" json:"quantity"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_item"
}

func (ci *CartItem) BeforeCreate(tx *gorm.DB) error {
	if ci.ID == uuid.Nil {
		ci.ID = uuid.New()
	}
	return nil
}
