package clients

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/internal/repo"
	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
)

// Repository wraps client persistence.
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

// Create inserts a new client row. An ID is assigned client-side when the
// caller did not set one.
func (r *Repository) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

// FindByID loads a client by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.DB(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// List returns clients ordered by last then first name.
func (r *Repository) List(ctx context.Context) ([]models.Client, error) {
	var rows []models.Client
	err := r.DB(ctx).Order("last_name ASC, first_name ASC").Find(&rows).Error
	return rows, err
}

// SetRegular flips the regular-customer flag.
func (r *Repository) SetRegular(ctx context.Context, id uuid.UUID, regular bool) error {
	res := r.DB(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		Update("is_regular", regular)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListOrders returns the client's orders newest first with lines preloaded.
func (r *Repository) ListOrders(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.DB(ctx).
		Preload("Lines").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}
