package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client holds the outstanding credit balance against a credit limit.
// CreditBalance only moves through the credit ledger's guarded update, so
// balance <= limit holds after every committed operation.
type Client struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	FirstName     string          `gorm:"column:first_name;not null"`
	LastName      string          `gorm:"column:last_name;not null"`
	Address       *string         `gorm:"column:address"`
	Phone         *string         `gorm:"column:phone"`
	IsRegular     bool            `gorm:"column:is_regular;not null;default:false"`
	CreditBalance decimal.Decimal `gorm:"column:credit_balance;type:numeric(10,2);not null;default:0"`
	CreditLimit   decimal.Decimal `gorm:"column:credit_limit;type:numeric(10,2);not null;default:1000"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
