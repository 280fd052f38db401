package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
)

func TestReserveDecrementsStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5, 2)
	l := NewLedger(nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		return l.Reserve(ctx, tx, product, 3)
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if got := loadQty(t, db, product); got != 2 {
		t.Fatalf("expected stock 2, got %d", got)
	}
}

func TestReserveFirstWins(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5, 2)
	l := NewLedger(nil)

	if err := l.Reserve(ctx, db, product, 5); err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	err := l.Reserve(ctx, db, product, 5)
	if err == nil {
		t.Fatal("expected second reserve to be refused")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(pkgerrors.InsufficientStockDetails)
	if !ok {
		t.Fatalf("unexpected details type: %T", typed.Details())
	}
	if details.Available != 0 || details.Requested != 5 {
		t.Fatalf("unexpected details: %+v", details)
	}

	if got := loadQty(t, db, product); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}

func TestReserveInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	product := seedProduct(t, db, 5, 2)
	l := NewLedger(nil)

	for _, qty := range []int{0, -1} {
		err := l.Reserve(context.Background(), db, product, qty)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("qty %d: unexpected error: %v", qty, err)
		}
	}

	if got := loadQty(t, db, product); got != 5 {
		t.Fatalf("expected stock untouched, got %d", got)
	}
}

func TestReserveUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	l := NewLedger(nil)

	err := l.Reserve(context.Background(), db, uuid.New(), 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReleaseRestoresStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5, 2)
	l := NewLedger(nil)

	if err := l.Reserve(ctx, db, product, 4); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := l.Release(ctx, db, product, 4); err != nil {
		t.Fatalf("release: %v", err)
	}

	if got := loadQty(t, db, product); got != 5 {
		t.Fatalf("expected stock 5, got %d", got)
	}
}

func TestReleaseUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	l := NewLedger(nil)

	err := l.Release(context.Background(), db, uuid.New(), 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdjust(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5, 2)
	l := NewLedger(nil)

	if err := l.Adjust(ctx, db, product, 7); err != nil {
		t.Fatalf("restock: %v", err)
	}
	if got := loadQty(t, db, product); got != 12 {
		t.Fatalf("expected stock 12, got %d", got)
	}

	if err := l.Adjust(ctx, db, product, -12); err != nil {
		t.Fatalf("write off: %v", err)
	}
	if got := loadQty(t, db, product); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}

	err := l.Adjust(ctx, db, product, 0)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdjustRefusesNegativeResult(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5, 2)
	l := NewLedger(nil)

	err := l.Adjust(ctx, db, product, -6)
	if err == nil {
		t.Fatal("expected write-off past zero to be refused")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(pkgerrors.InsufficientStockDetails)
	if !ok {
		t.Fatalf("unexpected details type: %T", typed.Details())
	}
	if details.Available != 5 || details.Requested != 6 {
		t.Fatalf("unexpected details: %+v", details)
	}

	if got := loadQty(t, db, product); got != 5 {
		t.Fatalf("expected stock untouched, got %d", got)
	}

	err = l.Adjust(ctx, db, uuid.New(), -1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStatusClassification(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5, 5)
	l := NewLedger(nil)

	status, err := l.Status(ctx, db, product)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != enums.StockStatusLow {
		t.Fatalf("expected low stock, got %s", status)
	}

	if err := l.Adjust(ctx, db, product, -5); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	status, err = l.Status(ctx, db, product)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != enums.StockStatusOut {
		t.Fatalf("expected out of stock, got %s", status)
	}

	if err := l.Adjust(ctx, db, product, 6); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	status, err = l.Status(ctx, db, product)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != enums.StockStatusIn {
		t.Fatalf("expected in stock, got %s", status)
	}
}

func seedProduct(t *testing.T, db *gorm.DB, qty, threshold int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:             uuid.New(),
		Name:           "Paracetamol 500mg",
		Category:       "analgesic",
		StockQty:       qty,
		AlertThreshold: threshold,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func loadQty(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product.StockQty
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate products: %v", err)
	}
	return db
}
