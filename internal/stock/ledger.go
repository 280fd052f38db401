package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
	"github.com/pharmatrack/pharmatrack-backend/pkg/metrics"
)

// Ledger owns every mutation of a product's on-hand quantity. Mutations run
// inside the caller's transaction so a reservation commits or rolls back with
// the order rows that caused it.
type Ledger interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Adjust(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error
	Status(ctx context.Context, db *gorm.DB, productID uuid.UUID) (enums.StockStatus, error)
}

type ledger struct {
	metrics *metrics.LedgerMetrics
}

// NewLedger exposes the default stock ledger implementation.
func NewLedger(m *metrics.LedgerMetrics) Ledger {
	return ledger{metrics: m}
}

// Reserve decrements the product's on-hand quantity. The decrement and the
// availability check are a single statement, so concurrent reservations
// serialize on the row lock and the first committer wins.
func (l ledger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock reservation")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock_qty = stock_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock_qty >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
	}
	if res.RowsAffected == 1 {
		l.metrics.IncStockReservation(metrics.OutcomeGranted)
		return nil
	}

	l.metrics.IncStockReservation(metrics.OutcomeRefused)
	product, err := loadProduct(ctx, tx, productID)
	if err != nil {
		return err
	}
	return pkgerrors.InsufficientStock(productID.String(), product.StockQty, qty)
}

// Release returns a previously reserved quantity to the product.
func (l ledger) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock release")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock_qty = stock_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NotFound("product", productID.String())
	}
	return nil
}

// Adjust applies a signed administrative correction, a restock when delta is
// positive or a write-off when negative. The correction is refused when it
// would leave the quantity below zero.
func (l ledger) Adjust(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error {
	if delta == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "adjustment delta must not be zero")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock adjustment")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock_qty = stock_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock_qty + ? >= 0
	`, delta, productID, delta)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "adjust stock")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	product, err := loadProduct(ctx, tx, productID)
	if err != nil {
		return err
	}
	return pkgerrors.InsufficientStock(productID.String(), product.StockQty, -delta)
}

// Status classifies the product's current quantity against its alert
// threshold.
func (l ledger) Status(ctx context.Context, db *gorm.DB, productID uuid.UUID) (enums.StockStatus, error) {
	if db == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "database required for stock status")
	}
	product, err := loadProduct(ctx, db, productID)
	if err != nil {
		return "", err
	}
	return enums.ClassifyStock(product.StockQty, product.AlertThreshold), nil
}

func loadProduct(ctx context.Context, db *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("product", productID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}
