package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status of a taxpayer tenant.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Taxpayer is a registered tenant. All devices, receipts and subscriptions
// hang off a taxpayer record.
type Taxpayer struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`

	TIN       string  `gorm:"column:tin;type:text;not null;uniqueIndex" json:"tin"`
	Name      string  `gorm:"type:text;not null" json:"name"`
	VATNumber *string `gorm:"column:vat_number;type:text" json:"vat_number,omitempty"`

	Province string `gorm:"type:text;not null" json:"province"`
	City     string `gorm:"type:text;not null" json:"city"`
	Street   string `gorm:"type:text;not null" json:"street"`
	HouseNo  string `gorm:"column:house_no;type:text;not null" json:"house_no"`

	PhoneNo *string `gorm:"column:phone_no;type:text" json:"phone_no,omitempty"`
	Email   *string `gorm:"type:text" json:"email,omitempty"`

	Status Status `gorm:"type:text;not null;default:active" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Taxpayer) TableName() string { return "taxpayers" }

func (t *Taxpayer) Validate() error {
	if len(strings.TrimSpace(t.TIN)) != 10 {
		return ErrInvalidTIN
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrInvalidName
	}
	if t.Province == "" || t.City == "" || t.Street == "" || t.HouseNo == "" {
		return ErrInvalidAddress
	}
	if t.Status != StatusActive && t.Status != StatusInactive {
		return ErrInvalidStatus
	}
	return nil
}
