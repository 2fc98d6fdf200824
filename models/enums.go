package models

// Tag is a classification label computed at intake time.
type Tag string

const (
	TagUSFlow          Tag = "US_FLOW"
	TagEUPro           Tag = "EU_PRO"
	TagUSAccredited    Tag = "US_ACCREDITED"
	TagRetail          Tag = "RETAIL"
	TagRetailCandidate Tag = "RETAIL_CANDIDATE"
	TagEDDRequired     Tag = "EDD_REQUIRED"
	TagBlockedReview   Tag = "BLOCKED_REVIEW"
)

// Self-declared investor status values offered by the form. The field also
// accepts free text, which matches none of these.
const (
	StatusProfessionalEU = "professional_eu"
	StatusAccreditedUS   = "accredited_us"
	StatusRetail         = "retail"
	StatusNotSure        = "not_sure"
)

type InvestorType string

const (
	InvestorRetail       InvestorType = "RETAIL"
	InvestorProfessional InvestorType = "PROFESSIONAL"
	InvestorAccredited   InvestorType = "ACCREDITED"
	InvestorQualified    InvestorType = "QUALIFIED"
)

type ComplianceStatus string

const (
	CompliancePendingReview ComplianceStatus = "PENDING_REVIEW"
	ComplianceApproved      ComplianceStatus = "APPROVED"
	ComplianceRejected      ComplianceStatus = "REJECTED"
	ComplianceEDDRequired   ComplianceStatus = "EDD_REQUIRED"
	ComplianceBlocked       ComplianceStatus = "BLOCKED"
)

// Income and capital buckets. Raw amounts are never collected.
var (
	AnnualIncomeBuckets      = []string{"under_50k", "50k_100k", "100k_250k", "250k_500k", "over_500k"}
	InvestableCapitalBuckets = []string{"under_10k", "10k_50k", "50k_250k", "250k_1m", "over_1m"}
	EUQualificationCounts    = []string{"0", "1", "2", "3"}
)
