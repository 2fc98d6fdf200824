// Package classify derives investor tags and backfill classifications from a
// normalized submission. Every function here is pure.
package classify

import (
	"strings"

	"github.com/yourusername/rwa-intake/models"
)

// Rule pairs a predicate with the value it yields when the predicate holds.
type Rule[T any] struct {
	Name  string
	When  func(s *models.Submission) bool
	Yield T
}

// Table is an ordered list of rules.
type Table[T any] []Rule[T]

// All returns the yield of every matching rule, in table order, without
// duplicates.
func (t Table[T]) All(s *models.Submission, eq func(a, b T) bool) []T {
	out := make([]T, 0, len(t))
	for _, r := range t {
		if !r.When(s) {
			continue
		}
		dup := false
		for _, v := range out {
			if eq(v, r.Yield) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r.Yield)
		}
	}
	return out
}

// First returns the yield of the first matching rule, or fallback.
func (t Table[T]) First(s *models.Submission, fallback T) T {
	for _, r := range t {
		if r.When(s) {
			return r.Yield
		}
	}
	return fallback
}

var (
	lowIncome  = []string{"under_50k", "50k_100k"}
	lowCapital = []string{"under_10k", "10k_50k"}
)

// IntakeRules is the live-form dialect. Rules are independent; all matching
// rules apply.
var IntakeRules = Table[models.Tag]{
	{Name: "us person", Yield: models.TagUSFlow, When: func(s *models.Submission) bool {
		return isTrue(s.IsUsPerson)
	}},
	{Name: "eu professional", Yield: models.TagEUPro, When: func(s *models.Submission) bool {
		return statusIs(s, models.StatusProfessionalEU) && oneOf(s.EUQualificationsCount, "2", "3")
	}},
	{Name: "us accredited", Yield: models.TagUSAccredited, When: func(s *models.Submission) bool {
		if !statusIs(s, models.StatusAccreditedUS) {
			return false
		}
		for _, q := range s.USAccreditedQualifications {
			if !strings.EqualFold(q, "none") {
				return true
			}
		}
		return false
	}},
	{Name: "retail", Yield: models.TagRetail, When: func(s *models.Submission) bool {
		return statusIs(s, models.StatusRetail)
	}},
	{Name: "retail candidate", Yield: models.TagRetailCandidate, When: func(s *models.Submission) bool {
		return statusIs(s, models.StatusNotSure) &&
			(oneOf(s.AnnualIncome, lowIncome...) || oneOf(s.InvestableCapital, lowCapital...))
	}},
	{Name: "pep", Yield: models.TagEDDRequired, When: func(s *models.Submission) bool {
		return isTrue(s.IsPep)
	}},
	{Name: "sanctioned", Yield: models.TagBlockedReview, When: func(s *models.Submission) bool {
		return isTrue(s.IsSanctioned)
	}},
}

// Classify returns the intake tags for s. A sanctions hit is only tagged; it
// does not stop the submission from being stored.
func Classify(s *models.Submission) []models.Tag {
	return IntakeRules.All(s, func(a, b models.Tag) bool { return a == b })
}

// TagStrings converts tags to their stored form.
func TagStrings(tags []models.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

func statusIs(s *models.Submission, status string) bool {
	return strings.EqualFold(strings.TrimSpace(s.InvestorStatus), status)
}

func oneOf(v string, set ...string) bool {
	for _, x := range set {
		if v == x {
			return true
		}
	}
	return false
}
