package analysis

import (
	"math"
	"time"

	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
)

// MinHistoryDays is the minimum number of observed days required before a
// local forecast is attempted. Below this, extrapolation is little more
// than a guess and we refuse rather than answer silently.
const MinHistoryDays = 7

// ForecastSeries projects the daily cost series horizonDays beyond its last
// observed date using a least-squares linear trend. Gaps in the series are
// respected: each observation keeps its real day offset, so a sparse series
// does not distort the slope. Negative point predictions are clamped to
// zero, since spend cannot be negative.
func ForecastSeries(daily []entity.DailyCost, horizonDays int) (*entity.Forecast, error) {
	const op = "analysis.ForecastSeries"

	if horizonDays <= 0 {
		return nil, types.Errorf(types.KindInvalidWindow, op, "forecast horizon must be positive, got %d", horizonDays)
	}
	if len(daily) < MinHistoryDays {
		return nil, types.Errorf(types.KindInsufficientHistory, op,
			"need at least %d observed days to forecast, have %d", MinHistoryDays, len(daily))
	}

	origin := daily[0].Date
	xs := make([]float64, len(daily))
	ys := make([]float64, len(daily))
	for i, d := range daily {
		xs[i] = d.Date.Sub(origin).Hours() / 24
		ys[i] = d.Cost
	}

	slope, intercept := leastSquares(xs, ys)

	// Residual standard deviation drives the confidence bound.
	var sumSq float64
	for i := range xs {
		r := ys[i] - (intercept + slope*xs[i])
		sumSq += r * r
	}
	stddev := math.Sqrt(sumSq / float64(len(xs)))
	bound := 1.96 * stddev

	lastDate := daily[len(daily)-1].Date
	lastX := xs[len(xs)-1]

	points := make([]entity.ForecastPoint, horizonDays)
	var total float64
	for i := 0; i < horizonDays; i++ {
		x := lastX + float64(i+1)
		predicted := intercept + slope*x
		if predicted < 0 {
			predicted = 0
		}
		lower := predicted - bound
		if lower < 0 {
			lower = 0
		}
		points[i] = entity.ForecastPoint{
			Date:            lastDate.AddDate(0, 0, i+1),
			PredictedAmount: predicted,
			LowerBound:      lower,
			UpperBound:      predicted + bound,
		}
		total += predicted
	}

	return &entity.Forecast{
		Points:        points,
		TotalForecast: total,
		DailyAverage:  total / float64(horizonDays),
		Days:          horizonDays,
		Source:        entity.ForecastSourceLocal,
	}, nil
}

// leastSquares fits y = intercept + slope*x. A degenerate x spread (all
// observations on one day) falls back to a flat line at the mean.
func leastSquares(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// ForecastWindow is a convenience for callers that think in horizons, not
// dates: the window starts the day after lastObserved.
func ForecastWindow(lastObserved time.Time, horizonDays int) (start, end time.Time) {
	start = lastObserved.AddDate(0, 0, 1)
	end = start.AddDate(0, 0, horizonDays)
	return start, end
}
