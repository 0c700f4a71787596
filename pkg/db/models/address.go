package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a delivery address in the buyer's address book. Checkout only
// requires that one exists; it does not validate the fields beyond presence.
type Address struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"column:session_id;type:uuid;not null;index" json:"session_id"`
	Label     string    `gorm:"column:label;not null;default:'Home'" json:"label"`
	Line1     string    `gorm:"column:line1;not null" json:"line1"`
	City      string    `gorm:"column:city;not null" json:"city"`
	State     string    `gorm:"column:state;not null" json:"state"`
	Pincode   string    `gorm:"column:pincode;not null" json:"pincode"`
	Phone     string    `gorm:"column:phone;not null;default:''" json:"phone"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the id when the caller left it zero.
func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
