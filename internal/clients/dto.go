package clients

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
)

// CreateClientInput holds the validated payload to register a client.
type CreateClientInput struct {
	FirstName   string
	LastName    string
	Address     *string
	Phone       *string
	IsRegular   bool
	CreditLimit decimal.Decimal
}

// ClientDTO is the client read model.
type ClientDTO struct {
	ID            uuid.UUID       `json:"id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Address       *string         `json:"address,omitempty"`
	Phone         *string         `json:"phone,omitempty"`
	IsRegular     bool            `json:"is_regular"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
	CreditLimit   decimal.Decimal `json:"credit_limit"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreditInfoDTO summarizes the client's credit headroom.
type CreditInfoDTO struct {
	ClientID  uuid.UUID       `json:"client_id"`
	Balance   decimal.Decimal `json:"balance"`
	Limit     decimal.Decimal `json:"limit"`
	Available decimal.Decimal `json:"available"`
}

// OrderSummaryDTO is one purchase-history entry.
type OrderSummaryDTO struct {
	ID        uuid.UUID         `json:"id"`
	Status    enums.OrderStatus `json:"status"`
	LineCount int               `json:"line_count"`
	Total     decimal.Decimal   `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
}

func toClientDTO(c *models.Client) *ClientDTO {
	return &ClientDTO{
		ID:            c.ID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Address:       c.Address,
		Phone:         c.Phone,
		IsRegular:     c.IsRegular,
		CreditBalance: c.CreditBalance,
		CreditLimit:   c.CreditLimit,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toOrderSummaries(rows []models.Order) []OrderSummaryDTO {
	out := make([]OrderSummaryDTO, 0, len(rows))
	for i := range rows {
		order := &rows[i]
		total := decimal.Zero
		for _, line := range order.Lines {
			total = total.Add(line.Subtotal())
		}
		out = append(out, OrderSummaryDTO{
			ID:        order.ID,
			Status:    order.Status,
			LineCount: len(order.Lines),
			Total:     total,
			CreatedAt: order.CreatedAt,
		})
	}
	return out
}
