package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/safetyshop-backend/pkg/types"
)

// Order keeps the storefront order exactly as the checkout flow wrote it.
// The document shape drifts between storefront releases, so it is stored
// as JSONB and only interpreted when an invoice is produced.
type Order struct {
	ID          uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber string        `gorm:"column:order_number;not null;uniqueIndex"`
	Document    types.JSONMap `gorm:"column:document;type:jsonb;serializer:json;not null"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns an id for dialects without gen_random_uuid().
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
