package entity

// CurrentMonth summarizes spend for the billing period in progress.
// AvgDailyCost is nil when zero days of the period have elapsed.
type CurrentMonth struct {
	TotalCost    float64       `json:"total_cost"`
	AvgDailyCost *float64      `json:"avg_daily_cost"`
	TopServices  []ServiceCost `json:"top_services"`
}

// Summary is the full cost report: current spend, forecast, breakdown,
// daily trend and ranked optimization opportunities. It is computed fresh
// from upstream data on every request and holds no cross-request state.
type Summary struct {
	AccountID    string       `json:"account_id,omitempty"`
	CurrentMonth CurrentMonth `json:"current_month"`

	Forecast  *Forecast            `json:"forecast,omitempty"`
	Breakdown ServiceCostBreakdown `json:"service_cost_breakdown"`

	DailyCosts []DailyCost `json:"daily_costs"`
	DailyTrend []DailyCost `json:"daily_trend"`

	Findings        []Finding        `json:"findings"`
	Recommendations []Recommendation `json:"recommendations"`

	// AggregatePotentialMonthlySavings is the sum of every recommendation's
	// potential savings. Each resource is counted once.
	AggregatePotentialMonthlySavings float64 `json:"aggregate_potential_monthly_savings"`

	// UnavailableSections names the report sections that could not be
	// populated because their upstream source failed. Empty on a full report.
	UnavailableSections []string `json:"unavailable_sections,omitempty"`
}
