package intake

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yourusername/rwa-intake/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	v.RegisterValidation("income_bucket", inSet(models.AnnualIncomeBuckets))
	v.RegisterValidation("capital_bucket", inSet(models.InvestableCapitalBuckets))
	v.RegisterValidation("eu_count", inSet(models.EUQualificationCounts))
	return v
}

func inSet(set []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, s := range set {
			if v == s {
				return true
			}
		}
		return false
	}
}

// rules applies field constraints on top of RawSubmission after normalization.
type rules struct {
	FullName          string `json:"full_name" validate:"required,max=255"`
	Email             string `json:"email" validate:"required,max=255,email"`
	Country           string `json:"country" validate:"required,max=100"`
	City              string `json:"city" validate:"max=100"`
	RegisteringAs     string `json:"registering_as" validate:"required,max=50"`
	EntityName        string `json:"entity_name" validate:"max=255"`
	InvestorStatus    string `json:"investor_status" validate:"max=100"`
	EUCount           string `json:"eu_qualifications_count" validate:"omitempty,eu_count"`
	AnnualIncome      string `json:"annual_income" validate:"omitempty,income_bucket"`
	InvestableCapital string `json:"investable_capital" validate:"omitempty,capital_bucket"`
	InvestmentHorizon string `json:"investment_horizon" validate:"max=50"`
	TicketSize        string `json:"ticket_size" validate:"max=50"`
	ContactChannel    string `json:"contact_channel" validate:"max=50"`
	Phone             string `json:"phone" validate:"max=50"`
}

// Validate normalizes raw and checks it. On failure the returned error is a
// *ValidationError naming every invalid field.
func Validate(raw RawSubmission) (*models.Submission, error) {
	s := &models.Submission{
		FullName:      strings.TrimSpace(raw.FullName),
		Email:         NormalizeEmail(raw.Email),
		Country:       strings.TrimSpace(raw.Country),
		City:          strings.TrimSpace(raw.City),
		RegisteringAs: strings.TrimSpace(raw.RegisteringAs),
		EntityName:    strings.TrimSpace(raw.EntityName),

		IsUsPerson:     raw.IsUsPerson,
		InvestorStatus: strings.TrimSpace(raw.InvestorStatus),
		IsPep:          raw.IsPep,
		IsSanctioned:   raw.IsSanctioned,

		EUProfessionalQualifications: normalizeSet(raw.EUProfessionalQualifications),
		EUQualificationsCount:        strings.TrimSpace(raw.EUQualificationsCount),
		USAccreditedQualifications:   normalizeSet(raw.USAccreditedQualifications),

		AnnualIncome:      strings.TrimSpace(raw.AnnualIncome),
		InvestableCapital: strings.TrimSpace(raw.InvestableCapital),

		InvestmentHorizon: strings.TrimSpace(raw.InvestmentHorizon),
		TicketSize:        strings.TrimSpace(raw.TicketSize),
		Priorities:        normalizeSet(raw.Priorities),
		AssetInterests:    normalizeSet(raw.AssetInterests),

		ContactChannel:   strings.TrimSpace(raw.ContactChannel),
		Phone:            strings.TrimSpace(raw.Phone),
		ConsentToContact: raw.ConsentToContact != nil && *raw.ConsentToContact,
		MarketingConsent: raw.MarketingConsent != nil && *raw.MarketingConsent,

		Tags: models.StringSet{},
	}

	err := validate.Struct(rules{
		FullName:          s.FullName,
		Email:             s.Email,
		Country:           s.Country,
		City:              s.City,
		RegisteringAs:     s.RegisteringAs,
		EntityName:        s.EntityName,
		InvestorStatus:    s.InvestorStatus,
		EUCount:           s.EUQualificationsCount,
		AnnualIncome:      s.AnnualIncome,
		InvestableCapital: s.InvestableCapital,
		InvestmentHorizon: s.InvestmentHorizon,
		TicketSize:        s.TicketSize,
		ContactChannel:    s.ContactChannel,
		Phone:             s.Phone,
	})
	verr := &ValidationError{}
	for name, reasons := range raw.decodeErrs.Fields {
		for _, r := range reasons {
			verr.add(name, r)
		}
	}
	if err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("validate submission: %w", err)
		}
		for _, fe := range fieldErrs {
			// A field that failed to decode already carries its reason.
			if _, bad := raw.decodeErrs.Fields[fe.Field()]; bad {
				continue
			}
			verr.add(fe.Field(), reason(fe))
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return s, nil
}

// NormalizeEmail trims and lowercases an address. The result is the dedup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeSet(in []string) models.StringSet {
	out := make(models.StringSet, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "income_bucket":
		return "must be one of: " + strings.Join(models.AnnualIncomeBuckets, ", ")
	case "capital_bucket":
		return "must be one of: " + strings.Join(models.InvestableCapitalBuckets, ", ")
	case "eu_count":
		return "must be one of: " + strings.Join(models.EUQualificationCounts, ", ")
	default:
		return "is invalid"
	}
}
