package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
)

// Invoice snapshots an order's total at creation time. TotalAmount is frozen
// there; later order mutations never change it.
type Invoice struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	DiscountPct   decimal.Decimal     `gorm:"column:discount_pct;type:numeric(5,2);not null;default:0"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(10,2);not null"`
	AmountPaid    decimal.Decimal     `gorm:"column:amount_paid;type:numeric(10,2);not null;default:0"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'cash'"`
	IsPaid        bool                `gorm:"column:is_paid;not null;default:false"`
	Payments      []Payment           `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// FinalAmount applies the discount to the frozen total, rounded to two
// decimals (half away from zero).
func (i Invoice) FinalAmount() decimal.Decimal {
	discount := i.TotalAmount.Mul(i.DiscountPct).Div(decimal.NewFromInt(100))
	return i.TotalAmount.Sub(discount).Round(2)
}

// Remaining is the unpaid portion of the final amount.
func (i Invoice) Remaining() decimal.Decimal {
	return i.FinalAmount().Sub(i.AmountPaid)
}
