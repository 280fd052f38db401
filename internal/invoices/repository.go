package invoices

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/internal/repo"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
)

// Repository wraps invoice and payment persistence.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// Create inserts a new invoice row.
func (r *Repository) Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if err := r.DB(ctx).Omit("Payments").Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// FindByID loads an invoice with its payments.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.DB(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&invoice, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByOrder loads the invoice cut from the given order, if any.
func (r *Repository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.DB(ctx).First(&invoice, "order_id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// List returns invoices newest first with payments preloaded.
func (r *Repository) List(ctx context.Context) ([]models.Invoice, error) {
	var rows []models.Invoice
	err := r.DB(ctx).
		Preload("Payments").
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ApplyPayment advances amount_paid only while the new sum still fits under
// the final amount, and persists is_paid in the same statement. It reports
// whether the row changed, so concurrent payments resolve to a single
// winner. The bound final amount arrives as text, so it is cast back to
// numeric before the comparisons.
func (r *Repository) ApplyPayment(ctx context.Context, invoiceID uuid.UUID, amount, finalAmount decimal.Decimal) (bool, error) {
	res := r.DB(ctx).Exec(`
		UPDATE invoices
		SET amount_paid = amount_paid + ?,
			is_paid = (amount_paid + ? >= CAST(? AS NUMERIC)),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND amount_paid + ? <= CAST(? AS NUMERIC)
	`, amount, amount, finalAmount, invoiceID, amount, finalAmount)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CreatePayment inserts a settlement row.
func (r *Repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}
