package entity

import "time"

// ForecastPoint is a single predicted day of spend. The bounds are a
// symmetric confidence interval around the prediction; they are zero when
// the source provides no interval.
type ForecastPoint struct {
	Date            time.Time `json:"date"`
	PredictedAmount float64   `json:"predicted_amount"`
	LowerBound      float64   `json:"lower_bound,omitempty"`
	UpperBound      float64   `json:"upper_bound,omitempty"`
}

// ForecastSource identifies which model produced a forecast.
type ForecastSource string

const (
	// ForecastSourceUpstream means the billing API's own forecast endpoint.
	ForecastSourceUpstream ForecastSource = "cost_explorer"
	// ForecastSourceLocal means the locally computed linear trend model.
	ForecastSourceLocal ForecastSource = "linear_trend"
)

// Forecast is a projection of spend over a fixed horizon immediately
// following the last observed day. TotalForecast is never negative.
type Forecast struct {
	Points        []ForecastPoint `json:"points"`
	TotalForecast float64         `json:"total_forecast"`
	DailyAverage  float64         `json:"daily_average"`
	Days          int             `json:"days"`
	Source        ForecastSource  `json:"source"`
}
