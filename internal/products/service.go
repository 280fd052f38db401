package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pharmatrack/pharmatrack-backend/internal/stock"
	pkgerrors "github.com/pharmatrack/pharmatrack-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog management operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context) ([]ProductDTO, error)
	Update(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Adjust(ctx context.Context, productID uuid.UUID, delta int) (*ProductDTO, error)
	ListOutOfStock(ctx context.Context) ([]ProductDTO, error)
	ListLowStock(ctx context.Context) ([]ProductDTO, error)
}

type service struct {
	repo  *Repository
	tx    txRunner
	stock stock.Ledger
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, tx txRunner, stockLedger stock.Ledger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stockLedger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	return &service{repo: repo, tx: tx, stock: stockLedger}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	product, err := s.repo.Create(ctx, input.toModel())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return toProductDTO(product), nil
}

// Get returns the product with its stock classification taken from the
// ledger.
func (s *service) Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("product", productID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	status, err := s.stock.Status(ctx, s.repo.DB(ctx), productID)
	if err != nil {
		return nil, err
	}

	dto := toProductDTO(product)
	dto.StockStatus = status
	return dto, nil
}

func (s *service) List(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return toProductDTOs(rows), nil
}

func (s *service) Update(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("product", productID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name must not be empty")
		}
		product.Name = name
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product category must not be empty")
		}
		product.Category = category
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
		}
		product.UnitPrice = *input.UnitPrice
	}
	if input.AlertThreshold != nil {
		if *input.AlertThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "alert threshold must not be negative")
		}
		product.AlertThreshold = *input.AlertThreshold
	}

	product, err = s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return toProductDTO(product), nil
}

// Adjust applies an administrative stock correction (restock or write-off)
// and returns the refreshed read model.
func (s *service) Adjust(ctx context.Context, productID uuid.UUID, delta int) (*ProductDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.stock.Adjust(ctx, tx, productID, delta)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, productID)
}

func (s *service) ListOutOfStock(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListOutOfStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list out-of-stock products")
	}
	return toProductDTOs(rows), nil
}

func (s *service) ListLowStock(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low-stock products")
	}
	return toProductDTOs(rows), nil
}

func validateCreate(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name must not be empty")
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product category must not be empty")
	}
	if input.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}
	if input.StockQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must not be negative")
	}
	if input.AlertThreshold < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "alert threshold must not be negative")
	}
	return nil
}
