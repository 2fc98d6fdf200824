package intake

import (
	"encoding/json"
	"reflect"
	"strings"
)

// RawSubmission is the early-access form body as posted by the browser.
// Every field is optional at this layer; Validate decides what is required.
type RawSubmission struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Country       string `json:"country"`
	City          string `json:"city"`
	RegisteringAs string `json:"registering_as"`
	EntityName    string `json:"entity_name"`

	IsUsPerson     *bool  `json:"is_us_person"`
	InvestorStatus string `json:"investor_status"`
	IsPep          *bool  `json:"is_pep"`
	IsSanctioned   *bool  `json:"is_sanctioned"`

	EUProfessionalQualifications []string `json:"eu_professional_qualifications"`
	EUQualificationsCount        string   `json:"eu_qualifications_count"`
	USAccreditedQualifications   []string `json:"us_accredited_qualifications"`

	AnnualIncome      string `json:"annual_income"`
	InvestableCapital string `json:"investable_capital"`

	InvestmentHorizon string   `json:"investment_horizon"`
	TicketSize        string   `json:"ticket_size"`
	Priorities        []string `json:"priorities"`
	AssetInterests    []string `json:"asset_interests"`

	ContactChannel   string `json:"contact_channel"`
	Phone            string `json:"phone"`
	ConsentToContact *bool  `json:"consent_to_contact"`
	MarketingConsent *bool  `json:"marketing_consent"`

	decodeErrs ValidationError
}

// DecodeRaw parses a JSON request body field by field. A field holding the
// wrong JSON type is left at its zero value and reported by Validate along
// with every other invalid field. Only a body that is not a JSON object fails
// here.
func DecodeRaw(body []byte) (RawSubmission, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return RawSubmission{}, &ValidationError{Fields: map[string][]string{
			"body": {"must be a valid JSON object"},
		}}
	}

	var raw RawSubmission
	v := reflect.ValueOf(&raw).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := jsonName(f)
		if !f.IsExported() || name == "" {
			continue
		}
		msg, ok := fields[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, v.Field(i).Addr().Interface()); err != nil {
			raw.decodeErrs.add(name, typeReason(f.Type))
		}
	}
	return raw, nil
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func typeReason(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Ptr, reflect.Bool:
		return "must be of type boolean"
	case reflect.Slice:
		return "must be an array of strings"
	default:
		return "must be of type string"
	}
}
