package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
)

// Payment is a single settlement event against an invoice.
type Payment struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceID uuid.UUID           `gorm:"column:invoice_id;type:uuid;not null"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Method    enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	IsValid   bool                `gorm:"column:is_valid;not null;default:true"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
