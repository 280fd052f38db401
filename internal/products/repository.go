package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/internal/repo"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
)

// Repository wraps catalog persistence for products.
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

// Create inserts a new product row. An ID is assigned client-side when the
// caller did not set one.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads a product by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns the catalog ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.DB(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

// Update persists catalog field changes on an existing row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ListOutOfStock returns products with nothing on hand.
func (r *Repository) ListOutOfStock(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.DB(ctx).
		Where("stock_qty = 0").
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListLowStock returns products at or below their alert threshold but not
// yet out of stock.
func (r *Repository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.DB(ctx).
		Where("stock_qty > 0 AND stock_qty <= alert_threshold").
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}
