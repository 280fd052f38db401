package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/internal/repo"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
)

// Repository wraps order and order-line persistence.
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

// Create inserts a new order row without lines.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := r.DB(ctx).Omit("Lines").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first with lines preloaded.
func (r *Repository) List(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.DB(ctx).
		Preload("Lines").
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateStatusIf flips the order status only when the current status still
// matches from. It reports whether the row changed, so concurrent flips
// resolve to a single winner.
func (r *Repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete removes the order. Lines go with it through the FK cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Order{}).Error
}

// CreateLine inserts a new order line.
func (r *Repository) CreateLine(ctx context.Context, line *models.OrderLine) (*models.OrderLine, error) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// FindLine loads a line that belongs to the given order.
func (r *Repository) FindLine(ctx context.Context, orderID, lineID uuid.UUID) (*models.OrderLine, error) {
	var line models.OrderLine
	err := r.DB(ctx).
		First(&line, "id = ? AND order_id = ?", lineID, orderID).
		Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindLineByProduct loads the line for a product on the given order, if any.
func (r *Repository) FindLineByProduct(ctx context.Context, orderID, productID uuid.UUID) (*models.OrderLine, error) {
	var line models.OrderLine
	err := r.DB(ctx).
		First(&line, "order_id = ? AND product_id = ?", orderID, productID).
		Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// UpdateLineQuantity overwrites the line quantity. The captured unit price
// never changes after creation.
func (r *Repository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, qty int) error {
	return r.DB(ctx).
		Model(&models.OrderLine{}).
		Where("id = ?", lineID).
		Update("quantity", qty).
		Error
}

// DeleteLine removes a single line.
func (r *Repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", lineID).Delete(&models.OrderLine{}).Error
}
