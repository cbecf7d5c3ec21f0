package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound         = errors.New("subdomain_not_found")
	ErrInvalidSubdomain = errors.New("invalid_subdomain")
	ErrInvalidTaxpayer  = errors.New("invalid_taxpayer")
	ErrSubdomainTaken   = errors.New("subdomain_taken")
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Subdomain maps a dashboard subdomain name to a taxpayer tenant.
type Subdomain struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Name       string       `gorm:"type:text;not null;uniqueIndex" json:"name"`
	TaxpayerID snowflake.ID `gorm:"column:taxpayer_id;not null;index" json:"taxpayer_id"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Subdomain) TableName() string { return "subdomains" }

func (s *Subdomain) Validate() error {
	if !subdomainPattern.MatchString(s.Name) {
		return ErrInvalidSubdomain
	}
	if s.TaxpayerID == 0 {
		return ErrInvalidTaxpayer
	}
	return nil
}
