package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hydernasirr/aws-finops-2/internal/application/analysis"
	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
	"github.com/hydernasirr/aws-finops-2/internal/domain/repository"
	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
)

// sectionForecast marks the forecast sub-section unavailable in a degraded
// summary.
const sectionForecast = "forecast"

// ReportUseCase drives one report request end to end: concurrent gateway
// fetches, the aggregation/audit chain, and final composition. It holds no
// mutable state, so concurrent requests never interfere.
type ReportUseCase struct {
	usageRepo repository.UsageRepository
	auditor   *analysis.Auditor
	cfg       types.Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportUseCase creates a new report use case.
func NewReportUseCase(usageRepo repository.UsageRepository, cfg types.Config, logger *zap.Logger) *ReportUseCase {
	if cfg.DaysBack <= 0 {
		cfg.DaysBack = types.DefaultConfig().DaysBack
	}
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = types.DefaultConfig().ForecastDays
	}
	return &ReportUseCase{
		usageRepo: usageRepo,
		auditor:   analysis.NewAuditor(cfg.Pricing, cfg.StalenessDays),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// window computes the [start, end) fetch window ending today (UTC).
func (uc *ReportUseCase) window(days int) (start, end time.Time, err error) {
	if days <= 0 {
		return time.Time{}, time.Time{}, types.Errorf(types.KindInvalidWindow, "usecase.window",
			"window must cover at least one day, got %d", days)
	}
	now := uc.now().UTC()
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start = end.AddDate(0, 0, -days)
	return start, end, nil
}

// GetCostBreakdown returns the per-service cost aggregation for the last
// `days` days.
func (uc *ReportUseCase) GetCostBreakdown(ctx context.Context, days int) (entity.ServiceCostBreakdown, error) {
	records, err := uc.fetchWindow(ctx, days)
	if err != nil {
		return entity.ServiceCostBreakdown{}, err
	}
	return analysis.AggregateByCategory(records), nil
}

// GetDailyCosts returns the daily cost series for the last `days` days.
func (uc *ReportUseCase) GetDailyCosts(ctx context.Context, days int) ([]entity.DailyCost, error) {
	records, err := uc.fetchWindow(ctx, days)
	if err != nil {
		return nil, err
	}
	return analysis.BuildDailySeries(records), nil
}

// GetForecast projects spend `horizonDays` ahead. The upstream provider's
// own forecast is preferred; when it is unavailable for a non-auth reason
// the local trend model takes over, provided enough history exists.
func (uc *ReportUseCase) GetForecast(ctx context.Context, horizonDays int) (*entity.Forecast, error) {
	if horizonDays <= 0 {
		return nil, types.Errorf(types.KindInvalidWindow, "usecase.GetForecast",
			"forecast horizon must be positive, got %d", horizonDays)
	}

	records, err := uc.fetchWindow(ctx, uc.cfg.DaysBack)
	if err != nil {
		return nil, err
	}
	return uc.forecastFromSeries(ctx, analysis.BuildDailySeries(records), horizonDays)
}

// forecastFromSeries tries the upstream forecast first and falls back to
// the local trend model over an already-built daily series.
func (uc *ReportUseCase) forecastFromSeries(ctx context.Context, daily []entity.DailyCost, horizonDays int) (*entity.Forecast, error) {
	var lastObserved time.Time
	if len(daily) > 0 {
		lastObserved = daily[len(daily)-1].Date
	} else {
		lastObserved = uc.now().UTC().AddDate(0, 0, -1)
	}
	start, end := analysis.ForecastWindow(lastObserved, horizonDays)

	forecast, upstreamErr := uc.usageRepo.FetchCostForecast(ctx, start, end)
	if upstreamErr == nil {
		return forecast, nil
	}
	switch types.KindOf(upstreamErr) {
	case types.KindUnauthenticated, types.KindUnauthorized, types.KindInvalidWindow:
		return nil, upstreamErr
	}
	if ctx.Err() != nil {
		return nil, upstreamErr
	}

	uc.logger.Warn("upstream forecast unavailable, using local trend model", zap.Error(upstreamErr))
	return analysis.ForecastSeries(daily, horizonDays)
}

// GetFindings runs a fresh audit over the current inventory. The second
// return value names sections whose inventory source failed.
func (uc *ReportUseCase) GetFindings(ctx context.Context) ([]entity.Finding, []string, error) {
	inventory, err := uc.usageRepo.FetchResourceInventory(ctx, entity.AllResourceTypes)
	if err != nil {
		return nil, nil, err
	}
	return uc.auditor.Audit(inventory.Records), sectionNames(inventory.FailedSections), nil
}

// GetRecommendations builds the ranked savings recommendations from a fresh
// audit.
func (uc *ReportUseCase) GetRecommendations(ctx context.Context) ([]entity.Recommendation, []string, error) {
	findings, unavailable, err := uc.GetFindings(ctx)
	if err != nil {
		return nil, nil, err
	}
	return analysis.BuildRecommendations(findings, entity.ServiceCostBreakdown{}), unavailable, nil
}

// GetSummary builds the full report. Cost and inventory fetches run
// concurrently; a fatal error on either side cancels the other. The
// aggregation chain then runs in dependency order and compose assembles
// the result.
func (uc *ReportUseCase) GetSummary(ctx context.Context, days int) (*entity.Summary, error) {
	start, end, err := uc.window(days)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type costResult struct {
		records []entity.CostRecord
		err     error
	}
	type inventoryResult struct {
		inventory repository.InventoryResult
		err       error
	}

	costCh := make(chan costResult, 1)
	invCh := make(chan inventoryResult, 1)

	go func() {
		records, err := uc.usageRepo.FetchCostAndUsage(ctx, start, end, entity.GranularityDaily)
		if err != nil {
			cancel()
		}
		costCh <- costResult{records: records, err: err}
	}()
	go func() {
		inventory, err := uc.usageRepo.FetchResourceInventory(ctx, entity.AllResourceTypes)
		if err != nil {
			cancel()
		}
		invCh <- inventoryResult{inventory: inventory, err: err}
	}()

	cost := <-costCh
	inv := <-invCh
	if cost.err != nil {
		return nil, cost.err
	}
	if inv.err != nil {
		return nil, inv.err
	}

	breakdown := analysis.AggregateByCategory(cost.records)
	daily := analysis.BuildDailySeries(cost.records)

	var unavailable []string
	forecast, err := uc.forecastFromSeries(ctx, daily, uc.cfg.ForecastDays)
	if err != nil {
		// Too little history degrades the forecast section; anything else
		// is a real failure and fails the report.
		if types.KindOf(err) != types.KindInsufficientHistory {
			return nil, err
		}
		uc.logger.Warn("forecast section unavailable", zap.Error(err))
		forecast = nil
		unavailable = append(unavailable, sectionForecast)
	}

	findings := uc.auditor.Audit(inv.inventory.Records)
	recommendations := analysis.BuildRecommendations(findings, breakdown)
	unavailable = append(unavailable, sectionNames(inv.inventory.FailedSections)...)

	summary := uc.compose(breakdown, daily, forecast, findings, recommendations)
	summary.UnavailableSections = unavailable
	summary.AccountID, _ = uc.usageRepo.AccountID(ctx)
	return summary, nil
}

// compose assembles the summary from already computed parts and derives the
// current-month and aggregate-savings fields.
func (uc *ReportUseCase) compose(
	breakdown entity.ServiceCostBreakdown,
	daily []entity.DailyCost,
	forecast *entity.Forecast,
	findings []entity.Finding,
	recommendations []entity.Recommendation,
) *entity.Summary {
	summary := &entity.Summary{
		CurrentMonth:                     uc.currentMonth(daily),
		Forecast:                         forecast,
		Breakdown:                        breakdown,
		DailyCosts:                       daily,
		DailyTrend:                       lastN(daily, 7),
		Findings:                         findings,
		Recommendations:                  recommendations,
		AggregatePotentialMonthlySavings: analysis.AggregateSavings(recommendations),
	}

	topN := 5
	if len(breakdown.Entries) < topN {
		topN = len(breakdown.Entries)
	}
	summary.CurrentMonth.TopServices = breakdown.Entries[:topN]
	return summary
}

// currentMonth sums the daily series entries that fall inside the billing
// period in progress. The average divides by elapsed complete days, so it
// is undefined (nil) on the first day of the month.
func (uc *ReportUseCase) currentMonth(daily []entity.DailyCost) entity.CurrentMonth {
	now := uc.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var total float64
	for _, d := range daily {
		if !d.Date.Before(monthStart) {
			total += d.Cost
		}
	}

	cm := entity.CurrentMonth{TotalCost: total}
	if elapsed := now.Day() - 1; elapsed > 0 {
		avg := total / float64(elapsed)
		cm.AvgDailyCost = &avg
	}
	return cm
}

func (uc *ReportUseCase) fetchWindow(ctx context.Context, days int) ([]entity.CostRecord, error) {
	start, end, err := uc.window(days)
	if err != nil {
		return nil, err
	}
	return uc.usageRepo.FetchCostAndUsage(ctx, start, end, entity.GranularityDaily)
}

func sectionNames(failed []entity.ResourceType) []string {
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, len(failed))
	for i, rt := range failed {
		names[i] = "findings:" + string(rt)
	}
	return names
}

func lastN(daily []entity.DailyCost, n int) []entity.DailyCost {
	if len(daily) <= n {
		return daily
	}
	return daily[len(daily)-n:]
}
