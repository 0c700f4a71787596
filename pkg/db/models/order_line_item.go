package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderLineItem captures the snapshot of a cart line at placement time.
type OrderLineItem struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID          uuid.UUID `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	ProductID        uuid.UUID `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	VendorID         uuid.UUID `gorm:"column:vendor_id;type:uuid;not null" json:"vendor_id"`
	Name             string    `gorm:"column:name;not null" json:"name"`
	UnitPriceCents   int       `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	Quantity         int       `gorm:"column:quantity;not null" json:"quantity"`
	LineTotalCents   int       `gorm:"column:line_total_cents;not null" json:"line_total_cents"`
	DeliveryEstimate string    `gorm:"column:delivery_estimate;not null;default:''" json:"delivery_estimate"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the id when the caller left it zero.
func (o *OrderLineItem) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
