package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry whose on-hand quantity is owned by the stock
// ledger; every stock mutation goes through a single-row guarded update.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	Category       string          `gorm:"column:category;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	StockQty       int             `gorm:"column:stock_qty;not null;default:0"`
	AlertThreshold int             `gorm:"column:alert_threshold;not null;default:10"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
