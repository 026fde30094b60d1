package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rivermart/storefront-backend/internal/logger"
	"github.com/rivermart/storefront-backend/internal/types"
)

type VariantRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, variantIDs []uuid.UUID) ([]*types.ProductVariant, error)
	Exists(ctx context.Context, tx *gorm.DB, variantID uuid.UUID) (bool, error)
}

type variantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVariantRepo(db *gorm.DB, baseLog *logger.Logger) VariantRepo {
	return &variantRepo{db: db, log: baseLog.With("repo", "VariantRepo")}
}

func (vr *variantRepo) GetByIDs(ctx context.Context, tx *gorm.DB, variantIDs []uuid.UUID) ([]*types.ProductVariant, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}

	var results []*types.ProductVariant
	if len(variantIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Product").
		Where("id IN ?", variantIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (vr *variantRepo) Exists(ctx context.Context, tx *gorm.DB, variantID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ProductVariant{}).
		Where("id = ?", variantID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
