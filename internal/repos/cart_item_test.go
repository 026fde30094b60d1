package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rivermart/storefront-backend/internal/logger"
	"github.com/rivermart/storefront-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// one connection so every session sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&types.User{}, &types.Product{}, &types.ProductVariant{}, &types.Cart{}, &types.CartItem{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestUpsertAddMergesQuantities(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartItemRepo(db, logger.NewNop())
	ctx := context.Background()

	cartID := uuid.New()
	variantID := uuid.New()

	for _, qty := range []int{1, 2, 4} {
		if err := repo.UpsertAdd(ctx, nil, &types.CartItem{
			CartID:           cartID,
			ProductVariantID: variantID,
			Quantity:         qty,
		}); err != nil {
			t.Fatalf("UpsertAdd(%d): %v", qty, err)
		}
	}

	items, err := repo.ListByCartID(ctx, nil, cartID)
	if err != nil {
		t.Fatalf("ListByCartID: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(items))
	}
	if items[0].Quantity != 7 {
		t.Fatalf("expected accumulated quantity 7, got %d", items[0].Quantity)
	}
}

func TestUpsertAddKeepsVariantsSeparate(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartItemRepo(db, logger.NewNop())
	ctx := context.Background()

	cartID := uuid.New()
	for i := 0; i < 3; i++ {
		if err := repo.UpsertAdd(ctx, nil, &types.CartItem{
			CartID:           cartID,
			ProductVariantID: uuid.New(),
			Quantity:         1,
		}); err != nil {
			t.Fatalf("UpsertAdd: %v", err)
		}
	}

	items, err := repo.ListByCartID(ctx, nil, cartID)
	if err != nil {
		t.Fatalf("ListByCartID: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(items))
	}
}

func TestSetQuantityScopedToCart(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartItemRepo(db, logger.NewNop())
	ctx := context.Background()

	cartID := uuid.New()
	item := &types.CartItem{CartID: cartID, ProductVariantID: uuid.New(), Quantity: 1}
	if err := repo.UpsertAdd(ctx, nil, item); err != nil {
		t.Fatalf("UpsertAdd: %v", err)
	}

	affected, err := repo.SetQuantity(ctx, nil, uuid.New(), item.ID, 5)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if affected != 0 {
		t.Fatalf("update through a foreign cart touched %d rows", affected)
	}

	affected, err = repo.SetQuantity(ctx, nil, cartID, item.ID, 5)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row updated, got %d", affected)
	}

	got, err := repo.GetByID(ctx, nil, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Quantity != 5 {
		t.Fatalf("expected absolute quantity 5, got %d", got.Quantity)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartItemRepo(db, logger.NewNop())
	ctx := context.Background()

	cartID := uuid.New()
	item := &types.CartItem{CartID: cartID, ProductVariantID: uuid.New(), Quantity: 2}
	if err := repo.UpsertAdd(ctx, nil, item); err != nil {
		t.Fatalf("UpsertAdd: %v", err)
	}

	if err := repo.Delete(ctx, nil, cartID, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, nil, cartID, item.ID); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}

	got, err := repo.GetByID(ctx, nil, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected item gone, still present with quantity %d", got.Quantity)
	}
}

func TestSumQuantities(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartItemRepo(db, logger.NewNop())
	ctx := context.Background()

	cartID := uuid.New()

	total, err := repo.SumQuantities(ctx, nil, cartID)
	if err != nil {
		t.Fatalf("SumQuantities: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0 for empty cart, got %d", total)
	}

	for _, qty := range []int{2, 3} {
		if err := repo.UpsertAdd(ctx, nil, &types.CartItem{
			CartID:           cartID,
			ProductVariantID: uuid.New(),
			Quantity:         qty,
		}); err != nil {
			t.Fatalf("UpsertAdd: %v", err)
		}
	}

	total, err = repo.SumQuantities(ctx, nil, cartID)
	if err != nil {
		t.Fatalf("SumQuantities: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 5, got %d", total)
	}
}

func TestCartGetOrCreateIsStable(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepo(db, logger.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	first, err := repo.GetOrCreate(ctx, nil, userID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	second, err := repo.GetOrCreate(ctx, nil, userID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("GetOrCreate returned two different carts for one user: %s vs %s", first.ID, second.ID)
	}
}
