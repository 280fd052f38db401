package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pharmatrack/pharmatrack-backend/pkg/enums"
)

// Order aggregates lines for one client. Status only moves forward:
// pending -> shipped or pending -> cancelled.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ClientID  uuid.UUID         `gorm:"column:client_id;type:uuid;not null"`
	Status    enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	Lines     []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
