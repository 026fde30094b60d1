package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is the authoritative server-side cart. The unique index on user_id
// keeps it to at most one cart per user; creation happens lazily on first
// authenticated cart access.
type Cart struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Cart) TableName() string {
	return "cart"
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
