package intake

import (
	"strings"
	"time"

	"github.com/yourusername/rwa-intake/models"
)

// CRMRecord flattens a persisted submission into the key/value shape the CRM
// workflow expects. Sets are joined with ", ".
func CRMRecord(s *models.Submission) map[string]any {
	return map[string]any{
		"id":                             s.ID,
		"email":                          s.Email,
		"full_name":                      s.FullName,
		"country":                        s.Country,
		"city":                           s.City,
		"registering_as":                 s.RegisteringAs,
		"entity_name":                    s.EntityName,
		"is_us_person":                   s.IsUsPerson,
		"investor_status":                s.InvestorStatus,
		"is_pep":                         s.IsPep,
		"is_sanctioned":                  s.IsSanctioned,
		"eu_professional_qualifications": join(s.EUProfessionalQualifications),
		"eu_qualifications_count":        s.EUQualificationsCount,
		"us_accredited_qualifications":   join(s.USAccreditedQualifications),
		"annual_income":                  s.AnnualIncome,
		"investable_capital":             s.InvestableCapital,
		"investment_horizon":             s.InvestmentHorizon,
		"ticket_size":                    s.TicketSize,
		"priorities":                     join(s.Priorities),
		"asset_interests":                join(s.AssetInterests),
		"contact_channel":                s.ContactChannel,
		"phone":                          s.Phone,
		"consent_to_contact":             s.ConsentToContact,
		"marketing_consent":              s.MarketingConsent,
		"tags":                           join(s.Tags),
		"created_at":                     s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func join(set models.StringSet) string {
	return strings.Join(set, ", ")
}
