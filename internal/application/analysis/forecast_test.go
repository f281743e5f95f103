package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
)

func series(start time.Time, costs ...float64) []entity.DailyCost {
	out := make([]entity.DailyCost, len(costs))
	for i, c := range costs {
		out[i] = entity.DailyCost{Date: start.AddDate(0, 0, i), Cost: c}
	}
	return out
}

func TestForecastSeries_InsufficientHistory(t *testing.T) {
	daily := series(day(2024, 1, 1), 10, 11, 12, 13, 14, 15)

	_, err := ForecastSeries(daily, 30)

	require.Error(t, err)
	assert.Equal(t, types.KindInsufficientHistory, types.KindOf(err))
}

func TestForecastSeries_ExactHorizon(t *testing.T) {
	daily := series(day(2024, 1, 1), 10, 10, 10, 10, 10, 10, 10)

	forecast, err := ForecastSeries(daily, 14)

	require.NoError(t, err)
	require.Len(t, forecast.Points, 14)
	assert.Equal(t, 14, forecast.Days)
	assert.Equal(t, entity.ForecastSourceLocal, forecast.Source)

	// Flat history projects flat.
	for _, p := range forecast.Points {
		assert.InDelta(t, 10.0, p.PredictedAmount, 1e-6)
	}
	assert.InDelta(t, 140.0, forecast.TotalForecast, 1e-6)
	assert.InDelta(t, 10.0, forecast.DailyAverage, 1e-6)
}

func TestForecastSeries_FollowsTrend(t *testing.T) {
	// Spend rising $2/day.
	daily := series(day(2024, 1, 1), 10, 12, 14, 16, 18, 20, 22)

	forecast, err := ForecastSeries(daily, 3)

	require.NoError(t, err)
	require.Len(t, forecast.Points, 3)
	assert.InDelta(t, 24.0, forecast.Points[0].PredictedAmount, 1e-6)
	assert.InDelta(t, 26.0, forecast.Points[1].PredictedAmount, 1e-6)
	assert.InDelta(t, 28.0, forecast.Points[2].PredictedAmount, 1e-6)
}

func TestForecastSeries_PointsFollowLastObservedDay(t *testing.T) {
	daily := series(day(2024, 1, 1), 5, 5, 5, 5, 5, 5, 5)

	forecast, err := ForecastSeries(daily, 2)

	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 8), forecast.Points[0].Date)
	assert.Equal(t, day(2024, 1, 9), forecast.Points[1].Date)
}

func TestForecastSeries_NegativePredictionsClamped(t *testing.T) {
	// Steep decline crosses zero inside the horizon.
	daily := series(day(2024, 1, 1), 70, 60, 50, 40, 30, 20, 10)

	forecast, err := ForecastSeries(daily, 10)

	require.NoError(t, err)
	for _, p := range forecast.Points {
		assert.GreaterOrEqual(t, p.PredictedAmount, 0.0)
		assert.GreaterOrEqual(t, p.LowerBound, 0.0)
	}
	assert.GreaterOrEqual(t, forecast.TotalForecast, 0.0)
}

func TestForecastSeries_InvalidHorizon(t *testing.T) {
	daily := series(day(2024, 1, 1), 1, 2, 3, 4, 5, 6, 7)

	_, err := ForecastSeries(daily, 0)

	require.Error(t, err)
	assert.Equal(t, types.KindInvalidWindow, types.KindOf(err))
}

func TestForecastSeries_RespectsGaps(t *testing.T) {
	// Observations on days 1, 3, 5, 7, 9, 11, 13: $1/day slope in real time.
	daily := make([]entity.DailyCost, 0, 7)
	for i := 0; i < 7; i++ {
		daily = append(daily, entity.DailyCost{
			Date: day(2024, 1, 1).AddDate(0, 0, i*2),
			Cost: 10 + float64(i*2),
		})
	}

	forecast, err := ForecastSeries(daily, 1)

	require.NoError(t, err)
	// Next calendar day after Jan 13 is Jan 14, one more $1 step.
	assert.Equal(t, day(2024, 1, 14), forecast.Points[0].Date)
	assert.InDelta(t, 23.0, forecast.Points[0].PredictedAmount, 1e-6)
}

func TestForecastWindow(t *testing.T) {
	start, end := ForecastWindow(day(2024, 5, 10), 30)
	assert.Equal(t, day(2024, 5, 11), start)
	assert.Equal(t, day(2024, 6, 10), end)
}
