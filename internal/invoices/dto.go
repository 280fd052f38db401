package invoices

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmatrack/pharmatrack-backend/pkg/db/models"
	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
)

// CreateInvoiceInput holds the validated payload to cut an invoice from an
// order.
type CreateInvoiceInput struct {
	OrderID       uuid.UUID
	DiscountPct   decimal.Decimal
	PaymentMethod enums.PaymentMethod
}

// PaymentInput holds the validated payload to record a payment.
type PaymentInput struct {
	Amount decimal.Decimal
	Method enums.PaymentMethod
}

// PaymentDTO is the settlement read model.
type PaymentDTO struct {
	ID        uuid.UUID           `json:"id"`
	InvoiceID uuid.UUID           `json:"invoice_id"`
	Amount    decimal.Decimal     `json:"amount"`
	Method    enums.PaymentMethod `json:"method"`
	IsValid   bool                `json:"is_valid"`
	CreatedAt time.Time           `json:"created_at"`
}

// InvoiceDTO is the invoice read model. TotalAmount is the frozen order
// total; FinalAmount and Remaining are derived from it.
type InvoiceDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderID       uuid.UUID           `json:"order_id"`
	DiscountPct   decimal.Decimal     `json:"discount_pct"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	FinalAmount   decimal.Decimal     `json:"final_amount"`
	AmountPaid    decimal.Decimal     `json:"amount_paid"`
	Remaining     decimal.Decimal     `json:"remaining"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	IsPaid        bool                `json:"is_paid"`
	Payments      []PaymentDTO        `json:"payments"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func toPaymentDTO(p *models.Payment) *PaymentDTO {
	return &PaymentDTO{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount,
		Method:    p.Method,
		IsValid:   p.IsValid,
		CreatedAt: p.CreatedAt,
	}
}

func toInvoiceDTO(invoice *models.Invoice) *InvoiceDTO {
	payments := make([]PaymentDTO, 0, len(invoice.Payments))
	for i := range invoice.Payments {
		payments = append(payments, *toPaymentDTO(&invoice.Payments[i]))
	}
	return &InvoiceDTO{
		ID:            invoice.ID,
		OrderID:       invoice.OrderID,
		DiscountPct:   invoice.DiscountPct,
		TotalAmount:   invoice.TotalAmount,
		FinalAmount:   invoice.FinalAmount(),
		AmountPaid:    invoice.AmountPaid,
		Remaining:     invoice.Remaining(),
		PaymentMethod: invoice.PaymentMethod,
		IsPaid:        invoice.IsPaid,
		Payments:      payments,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
}
