package entity

// Severity is the coarse priority tier of a recommendation, reflecting the
// typical magnitude of the waste it addresses.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Rank orders severities for sorting: HIGH before MEDIUM before LOW.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	}
	return 3
}

// Recommendation is one actionable savings opportunity, aggregated from the
// findings that share an idle condition. ResourceIDs always carries the full
// set; presentation may truncate it.
type Recommendation struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	Severity         Severity `json:"severity"`
	Action           string   `json:"action"`
	PotentialSavings float64  `json:"potential_savings"`
	ResourceIDs      []string `json:"resources"`
}
