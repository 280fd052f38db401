package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name           string
	Category       string
	UnitPrice      decimal.Decimal
	StockQty       int
	AlertThreshold int
}

// UpdateProductInput holds optional mutation values for a product. The
// on-hand quantity is absent on purpose; quantity moves through the stock
// ledger only.
type UpdateProductInput struct {
	Name           *string
	Category       *string
	UnitPrice      *decimal.Decimal
	AlertThreshold *int
}

func (in CreateProductInput) toModel() *models.Product {
	return &models.Product{
		Name:           in.Name,
		Category:       in.Category,
		UnitPrice:      in.UnitPrice,
		StockQty:       in.StockQty,
		AlertThreshold: in.AlertThreshold,
	}
}

// ProductDTO is the catalog read model.
type ProductDTO struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	StockQty       int               `json:"stock_qty"`
	AlertThreshold int               `json:"alert_threshold"`
	StockStatus    enums.StockStatus `json:"stock_status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func toProductDTO(p *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.Category,
		UnitPrice:      p.UnitPrice,
		StockQty:       p.StockQty,
		AlertThreshold: p.AlertThreshold,
		StockStatus:    enums.ClassifyStock(p.StockQty, p.AlertThreshold),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toProductDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toProductDTO(&rows[i]))
	}
	return out
}
