package entity

import "time"

// Granularity is the time bucket size used when fetching cost records.
type Granularity string

const (
	GranularityDaily   Granularity = "DAILY"
	GranularityMonthly Granularity = "MONTHLY"
)

// CostRecord is a single raw cost line as returned by the billing API:
// one service category, one time bucket, one non-negative amount.
type CostRecord struct {
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"`
}

// DailyCost is the total cost of one calendar day, summed across services.
// Dates in a series are unique and ascending; missing days are simply absent.
type DailyCost struct {
	Date time.Time `json:"date"`
	Cost float64   `json:"cost"`
}

// ServiceCost represents a cost amount for a specific service category.
type ServiceCost struct {
	ServiceName string  `json:"service_name"`
	Cost        float64 `json:"cost"`
}

// ServiceCostBreakdown aggregates a window's cost per service category.
// Entries are sorted by cost descending (ties broken by name) and Total
// equals the sum of the entries.
type ServiceCostBreakdown struct {
	Entries []ServiceCost `json:"services"`
	Total   float64       `json:"total"`
}
