package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/pkg/enums"
)

// Order is an immutable snapshot of a cart at checkout time plus two
// monotonic lifecycles (fulfillment status, payment status). Line items are
// deep copies; nothing here shares state with the live cart. Orders are
// never deleted.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderNumber      int64               `gorm:"column:order_number;not null;uniqueIndex" json:"order_number"`
	SessionID        uuid.UUID           `gorm:"column:session_id;type:uuid;not null;index" json:"session_id"`
	Status           enums.OrderStatus   `gorm:"column:status;not null;default:'pending'" json:"status"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'" json:"payment_status"`
	SubtotalCents    int                 `gorm:"column:subtotal_cents;not null" json:"subtotal_cents"`
	DeliveryFeeCents int                 `gorm:"column:delivery_fee_cents;not null" json:"delivery_fee_cents"`
	TotalCents       int                 `gorm:"column:total_cents;not null" json:"total_cents"`
	AdvanceCents     int                 `gorm:"column:advance_cents;not null" json:"advance_cents"`
	RemainingCents   int                 `gorm:"column:remaining_cents;not null" json:"remaining_cents"`
	VendorID         *uuid.UUID          `gorm:"column:vendor_id;type:uuid" json:"vendor_id,omitempty"`
	AddressID        uuid.UUID           `gorm:"column:address_id;type:uuid;not null" json:"address_id"`
	Vendor           *Vendor             `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Items            []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the id when the caller left it zero.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
