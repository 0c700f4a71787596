package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one product-quantity line inside a cart. A product appears at
// most once per cart; repeated adds merge into the existing line.
type CartItem struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CartID           uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID        uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_product" json:"product_id"`
	VendorID         uuid.UUID `gorm:"column:vendor_id;type:uuid;not null" json:"vendor_id"`
	Name             string    `gorm:"column:name;not null" json:"name"`
	UnitPriceCents   int       `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	Quantity         int       `gorm:"column:quantity;not null" json:"quantity"`
	DeliveryEstimate string    `gorm:"column:delivery_estimate;not null;default:''" json:"delivery_estimate"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the id when the caller left it zero.
func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
