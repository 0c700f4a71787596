package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmdirect/farmdirect-backend/pkg/enums"
)

// CartRecord is the single active cart owned by a buyer session. Checkout
// marks it converted instead of deleting it, so the record doubles as an
// audit trail of what the order was cut from.
type CartRecord struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID        `gorm:"column:session_id;type:uuid;not null;index" json:"session_id"`
	Status    enums.CartStatus `gorm:"column:status;not null;default:'active'" json:"status"`
	Items     []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the id when the caller left it zero.
func (c *CartRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
