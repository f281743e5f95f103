package analysis

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
)

// AggregateByCategory groups cost records by service category, summing
// amounts over the window. Entries come back sorted by cost descending,
// ties broken by service name, so consumers showing only the top N see a
// deterministic order.
func AggregateByCategory(records []entity.CostRecord) entity.ServiceCostBreakdown {
	grouped := lo.GroupBy(records, func(r entity.CostRecord) string {
		return r.Category
	})

	entries := make([]entity.ServiceCost, 0, len(grouped))
	for category, recs := range grouped {
		entries = append(entries, entity.ServiceCost{
			ServiceName: category,
			Cost: lo.SumBy(recs, func(r entity.CostRecord) float64 {
				return r.Amount
			}),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Cost != entries[j].Cost {
			return entries[i].Cost > entries[j].Cost
		}
		return entries[i].ServiceName < entries[j].ServiceName
	})

	return entity.ServiceCostBreakdown{
		Entries: entries,
		Total: lo.SumBy(entries, func(e entity.ServiceCost) float64 {
			return e.Cost
		}),
	}
}

// BuildDailySeries groups cost records by calendar day, summing same-day
// amounts across categories. The series is sorted ascending by date and
// days with no records are absent, never zero-filled.
func BuildDailySeries(records []entity.CostRecord) []entity.DailyCost {
	totals := make(map[time.Time]float64)
	for _, r := range records {
		day := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC)
		totals[day] += r.Amount
	}

	series := make([]entity.DailyCost, 0, len(totals))
	for day, cost := range totals {
		series = append(series, entity.DailyCost{Date: day, Cost: cost})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}
