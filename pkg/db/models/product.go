package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a vendor listing. The cart and checkout flows read price and
// stock from here but never mutate the listing itself; stock is only
// decremented when an order is placed.
type Product struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	VendorID         uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;index" json:"vendor_id"`
	Name             string    `gorm:"column:name;not null" json:"name"`
	Category         string    `gorm:"column:category;not null" json:"category"`
	Unit             string    `gorm:"column:unit;not null;default:'kg'" json:"unit"`
	PriceCents       int       `gorm:"column:price_cents;not null" json:"price_cents"`
	StockQty         int       `gorm:"column:stock_qty;not null;default:0" json:"stock_qty"`
	DeliveryEstimate string    `gorm:"column:delivery_estimate;not null;default:'1 day'" json:"delivery_estimate"`
	IsActive         bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Vendor           *Vendor   `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the id when the caller left it zero.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
