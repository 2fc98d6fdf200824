package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	// ExternalID is the auth provider's user id. Users backfilled from a
	// submission have none until they first sign in.
	ExternalID       *string          `gorm:"uniqueIndex;size:255" json:"external_id"`
	Email            string           `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FirstName        string           `gorm:"size:255" json:"first_name"`
	LastName         string           `gorm:"size:255" json:"last_name"`
	ImageURL         string           `gorm:"size:500" json:"image_url"`
	Country          string           `gorm:"size:100" json:"country"`
	ReferralCode     string           `gorm:"uniqueIndex;size:16;not null" json:"referral_code"`
	InvestorType     InvestorType     `gorm:"size:20;default:'RETAIL'" json:"investor_type"`
	ComplianceStatus ComplianceStatus `gorm:"size:20;default:'PENDING_REVIEW'" json:"compliance_status"`
	IsUsPerson       *bool            `json:"is_us_person"`
	IsPep            *bool            `json:"is_pep"`
	IsSanctioned     *bool            `json:"is_sanctioned"`
	Wallet           *Wallet          `gorm:"foreignKey:UserID" json:"wallet,omitempty"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
