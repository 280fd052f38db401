package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
)

// LineInput is one requested product quantity on an order.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput holds the validated payload to open an order.
type CreateOrderInput struct {
	ClientID uuid.UUID
	Lines    []LineInput
}

// OrderLineDTO is the line read model. UnitPrice is the price captured when
// the line was created, not the product's current price.
type OrderLineDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDTO is the order read model with its lines and computed total.
type OrderDTO struct {
	ID        uuid.UUID         `json:"id"`
	ClientID  uuid.UUID         `json:"client_id"`
	Status    enums.OrderStatus `json:"status"`
	Lines     []OrderLineDTO    `json:"lines"`
	Total     decimal.Decimal   `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func toOrderDTO(order *models.Order) *OrderDTO {
	lines := make([]OrderLineDTO, 0, len(order.Lines))
	total := decimal.Zero
	for _, line := range order.Lines {
		subtotal := line.Subtotal()
		total = total.Add(subtotal)
		lines = append(lines, OrderLineDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
		})
	}
	return &OrderDTO{
		ID:        order.ID,
		ClientID:  order.ClientID,
		Status:    order.Status,
		Lines:     lines,
		Total:     total,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}
