package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StringSet is a JSON-encoded list column. Stored as [] rather than null when empty.
type StringSet = datatypes.JSONSlice[string]

// Submission is one early-access intake event. The intake pipeline creates it
// once and never updates it; only the backfill or the auth webhook sets UserID.
type Submission struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`

	FullName      string `gorm:"size:255;not null" json:"full_name"`
	Country       string `gorm:"size:100;not null" json:"country"`
	City          string `gorm:"size:100" json:"city"`
	RegisteringAs string `gorm:"size:50;not null" json:"registering_as"`
	EntityName    string `gorm:"size:255" json:"entity_name"`

	// nil means the investor did not answer; it is not the same as false.
	IsUsPerson     *bool  `json:"is_us_person"`
	InvestorStatus string `gorm:"size:100" json:"investor_status"`
	IsPep          *bool  `json:"is_pep"`
	IsSanctioned   *bool  `json:"is_sanctioned"`

	EUProfessionalQualifications StringSet `gorm:"type:json" json:"eu_professional_qualifications"`
	EUQualificationsCount        string    `gorm:"size:10" json:"eu_qualifications_count"`
	USAccreditedQualifications   StringSet `gorm:"type:json" json:"us_accredited_qualifications"`

	AnnualIncome      string `gorm:"size:50" json:"annual_income"`
	InvestableCapital string `gorm:"size:50" json:"investable_capital"`

	InvestmentHorizon string    `gorm:"size:50" json:"investment_horizon"`
	TicketSize        string    `gorm:"size:50" json:"ticket_size"`
	Priorities        StringSet `gorm:"type:json" json:"priorities"`
	AssetInterests    StringSet `gorm:"type:json" json:"asset_interests"`

	ContactChannel   string `gorm:"size:50" json:"contact_channel"`
	Phone            string `gorm:"size:50" json:"phone"`
	ConsentToContact bool   `gorm:"not null;default:false" json:"consent_to_contact"`
	MarketingConsent bool   `gorm:"not null;default:false" json:"marketing_consent"`

	Tags StringSet `gorm:"type:json" json:"tags"`

	// Weak back-reference: no foreign key, so neither side cascades.
	UserID *string `gorm:"size:36;index" json:"user_id"`
}

// TableName overrides the table name
func (Submission) TableName() string {
	return "early_access_submissions"
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// HasTag reports whether t is among the submission's stored tags, ignoring case.
func (s *Submission) HasTag(t Tag) bool {
	for _, v := range s.Tags {
		if strings.EqualFold(strings.TrimSpace(v), string(t)) {
			return true
		}
	}
	return false
}
