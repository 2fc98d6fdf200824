package classify

import (
	"github.com/yourusername/rwa-intake/models"
)

// Legacy submissions carry free-text tags written by earlier versions of the
// form and by manual review ("PROFESSIONAL", "APPROVED", "REJECTED", ...).
// The tables below are order-sensitive: the first match wins.

func hasTag(names ...string) func(s *models.Submission) bool {
	return func(s *models.Submission) bool {
		for _, n := range names {
			if s.HasTag(models.Tag(n)) {
				return true
			}
		}
		return false
	}
}

func hasStatusOrTag(status string, names ...string) func(s *models.Submission) bool {
	tagged := hasTag(names...)
	return func(s *models.Submission) bool {
		return statusIs(s, status) || tagged(s)
	}
}

var LegacyComplianceRules = Table[models.ComplianceStatus]{
	{Name: "rejected", Yield: models.ComplianceRejected, When: hasTag("REJECTED")},
	{Name: "blocked", Yield: models.ComplianceBlocked, When: hasTag(string(models.TagBlockedReview), "BLOCKED")},
	{Name: "approved", Yield: models.ComplianceApproved, When: hasTag("APPROVED")},
	{Name: "edd", Yield: models.ComplianceEDDRequired, When: hasTag(string(models.TagEDDRequired))},
}

var LegacyInvestorRules = Table[models.InvestorType]{
	{Name: "professional", Yield: models.InvestorProfessional,
		When: hasStatusOrTag(models.StatusProfessionalEU, "PROFESSIONAL", string(models.TagEUPro))},
	{Name: "accredited", Yield: models.InvestorAccredited,
		When: hasStatusOrTag(models.StatusAccreditedUS, "ACCREDITED", string(models.TagUSAccredited))},
	{Name: "qualified", Yield: models.InvestorQualified, When: hasTag("QUALIFIED")},
}

// ClassifyLegacy maps a historical submission onto the user record's investor
// type and compliance status. Anything unmatched falls back to the least
// privileged pair, RETAIL and PENDING_REVIEW.
func ClassifyLegacy(s *models.Submission) (models.InvestorType, models.ComplianceStatus) {
	return LegacyInvestorRules.First(s, models.InvestorRetail),
		LegacyComplianceRules.First(s, models.CompliancePendingReview)
}
