package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
	"github.com/hydernasirr/aws-finops-2/internal/domain/repository"
	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
)

// fakeUsageRepository is a canned-response gateway double. Call counters
// verify which upstream operations a use case actually reaches.
type fakeUsageRepository struct {
	accountID   string
	costRecords []entity.CostRecord
	costErr     error
	forecast    *entity.Forecast
	forecastErr error
	inventory   repository.InventoryResult
	invErr      error

	costCalls     atomic.Int32
	forecastCalls atomic.Int32
	invCalls      atomic.Int32
}

func (f *fakeUsageRepository) AccountID(ctx context.Context) (string, error) {
	return f.accountID, nil
}

func (f *fakeUsageRepository) FetchCostAndUsage(ctx context.Context, start, end time.Time, granularity entity.Granularity) ([]entity.CostRecord, error) {
	f.costCalls.Add(1)
	return f.costRecords, f.costErr
}

func (f *fakeUsageRepository) FetchCostForecast(ctx context.Context, start, end time.Time) (*entity.Forecast, error) {
	f.forecastCalls.Add(1)
	return f.forecast, f.forecastErr
}

func (f *fakeUsageRepository) FetchResourceInventory(ctx context.Context, resourceTypes []entity.ResourceType) (repository.InventoryResult, error) {
	f.invCalls.Add(1)
	return f.inventory, f.invErr
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
}

func newTestUseCase(repo repository.UsageRepository) *ReportUseCase {
	cfg := types.DefaultConfig()
	cfg.Pricing = types.PricingConfig{
		EBSMonthlyPerGB:     0.10,
		ElasticIPMonthly:    3.60,
		FlatInstanceMonthly: 50.00,
	}
	uc := NewReportUseCase(repo, cfg, zap.NewNop())
	uc.now = fixedNow
	return uc
}

func costRecord(day int, service string, amount float64) entity.CostRecord {
	return entity.CostRecord{
		Category: service,
		Date:     time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
		Amount:   amount,
	}
}

func upstreamForecast() *entity.Forecast {
	return &entity.Forecast{
		Points: []entity.ForecastPoint{
			{Date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), PredictedAmount: 12},
		},
		TotalForecast: 360,
		DailyAverage:  12,
		Days:          30,
		Source:        entity.ForecastSourceUpstream,
	}
}

func TestGetSummary_HappyPath(t *testing.T) {
	repo := &fakeUsageRepository{
		accountID: "123456789012",
		costRecords: []entity.CostRecord{
			costRecord(1, "Amazon Elastic Compute Cloud - Compute", 10),
			costRecord(2, "Amazon Elastic Compute Cloud - Compute", 12),
			costRecord(2, "Amazon Simple Storage Service", 1),
		},
		forecast: upstreamForecast(),
		inventory: repository.InventoryResult{
			Records: []entity.ResourceRecord{
				{ResourceID: "i-abc", ResourceType: entity.ResourceTypeEC2Instance, State: "stopped"},
				{ResourceID: "vol-xyz", ResourceType: entity.ResourceTypeEBSVolume, State: "available", Metadata: entity.ResourceMetadata{SizeGB: 100}},
				{ResourceID: "i-run", ResourceType: entity.ResourceTypeEC2Instance, State: "running"},
			},
		},
	}
	uc := newTestUseCase(repo)

	summary, err := uc.GetSummary(context.Background(), 30)

	require.NoError(t, err)
	assert.Equal(t, "123456789012", summary.AccountID)

	assert.InDelta(t, 23, summary.Breakdown.Total, 1e-6)
	require.Len(t, summary.Breakdown.Entries, 2)
	assert.Equal(t, "Amazon Elastic Compute Cloud - Compute", summary.Breakdown.Entries[0].ServiceName)

	// All records fall inside June; 14 complete days have elapsed by the 15th.
	assert.InDelta(t, 23, summary.CurrentMonth.TotalCost, 1e-6)
	require.NotNil(t, summary.CurrentMonth.AvgDailyCost)
	assert.InDelta(t, 23.0/14.0, *summary.CurrentMonth.AvgDailyCost, 1e-6)
	assert.Len(t, summary.CurrentMonth.TopServices, 2)

	require.NotNil(t, summary.Forecast)
	assert.Equal(t, entity.ForecastSourceUpstream, summary.Forecast.Source)

	require.Len(t, summary.Findings, 2)
	require.Len(t, summary.Recommendations, 2)
	assert.InDelta(t, 60.00, summary.AggregatePotentialMonthlySavings, 1e-6)

	assert.Empty(t, summary.UnavailableSections)
	assert.Len(t, summary.DailyCosts, 2)
	assert.Len(t, summary.DailyTrend, 2)
}

func TestGetSummary_DailyTrendIsLastSevenDays(t *testing.T) {
	var records []entity.CostRecord
	for day := 1; day <= 14; day++ {
		records = append(records, costRecord(day, "Amazon Simple Storage Service", 1))
	}
	repo := &fakeUsageRepository{
		costRecords: records,
		forecast:    upstreamForecast(),
	}
	uc := newTestUseCase(repo)

	summary, err := uc.GetSummary(context.Background(), 30)

	require.NoError(t, err)
	assert.Len(t, summary.DailyCosts, 14)
	require.Len(t, summary.DailyTrend, 7)
	assert.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), summary.DailyTrend[0].Date)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), summary.DailyTrend[6].Date)
}

func TestGetSummary_UnauthenticatedFailsWholeReport(t *testing.T) {
	repo := &fakeUsageRepository{
		costErr: types.E(types.KindUnauthenticated, "gateway.FetchCostAndUsage", errors.New("bad key")),
		invErr:  types.E(types.KindUnauthenticated, "gateway.FetchResourceInventory", errors.New("bad key")),
	}
	uc := newTestUseCase(repo)

	summary, err := uc.GetSummary(context.Background(), 30)

	assert.Nil(t, summary)
	assert.Equal(t, types.KindUnauthenticated, types.KindOf(err))
	// The forecast stage is never reached after a fatal fetch error.
	assert.Zero(t, repo.forecastCalls.Load())
}

func TestGetSummary_EmptyInventoryIsAllClear(t *testing.T) {
	repo := &fakeUsageRepository{
		costRecords: []entity.CostRecord{costRecord(2, "Amazon Simple Storage Service", 5)},
		forecast:    upstreamForecast(),
	}
	uc := newTestUseCase(repo)

	summary, err := uc.GetSummary(context.Background(), 30)

	require.NoError(t, err)
	assert.Empty(t, summary.Findings)
	assert.Empty(t, summary.Recommendations)
	assert.Zero(t, summary.AggregatePotentialMonthlySavings)
}

func TestGetSummary_PartialInventoryDegrades(t *testing.T) {
	repo := &fakeUsageRepository{
		costRecords: []entity.CostRecord{costRecord(2, "Amazon Simple Storage Service", 5)},
		forecast:    upstreamForecast(),
		inventory: repository.InventoryResult{
			Records: []entity.ResourceRecord{
				{ResourceID: "i-abc", ResourceType: entity.ResourceTypeEC2Instance, State: "stopped"},
			},
			FailedSections: []entity.ResourceType{entity.ResourceTypeEBSVolume, entity.ResourceTypeElasticIP},
		},
	}
	uc := newTestUseCase(repo)

	summary, err := uc.GetSummary(context.Background(), 30)

	require.NoError(t, err)
	assert.Len(t, summary.Findings, 1)
	assert.ElementsMatch(t,
		[]string{"findings:ebs_volume", "findings:elastic_ip"},
		summary.UnavailableSections)
}

func TestGetSummary_ForecastDegradesOnThinHistory(t *testing.T) {
	repo := &fakeUsageRepository{
		costRecords: []entity.CostRecord{
			costRecord(12, "Amazon Simple Storage Service", 5),
			costRecord(13, "Amazon Simple Storage Service", 5),
		},
		forecastErr: types.E(types.KindInsufficientHistory, "gateway.FetchCostForecast", errors.New("account too young")),
	}
	uc := newTestUseCase(repo)

	summary, err := uc.GetSummary(context.Background(), 30)

	require.NoError(t, err)
	assert.Nil(t, summary.Forecast)
	assert.Contains(t, summary.UnavailableSections, "forecast")
	// Everything else survives.
	assert.InDelta(t, 10, summary.Breakdown.Total, 1e-6)
}

func TestGetSummary_InvalidWindow(t *testing.T) {
	repo := &fakeUsageRepository{}
	uc := newTestUseCase(repo)

	_, err := uc.GetSummary(context.Background(), 0)

	assert.Equal(t, types.KindInvalidWindow, types.KindOf(err))
	assert.Zero(t, repo.costCalls.Load())
	assert.Zero(t, repo.invCalls.Load())
}

func TestGetForecast_FallsBackToLocalTrend(t *testing.T) {
	var records []entity.CostRecord
	for day := 1; day <= 10; day++ {
		records = append(records, costRecord(day, "Amazon Simple Storage Service", 10))
	}
	repo := &fakeUsageRepository{
		costRecords: records,
		forecastErr: types.E(types.KindUpstreamUnavailable, "gateway.FetchCostForecast", errors.New("throttled")),
	}
	uc := newTestUseCase(repo)

	forecast, err := uc.GetForecast(context.Background(), 30)

	require.NoError(t, err)
	assert.Equal(t, entity.ForecastSourceLocal, forecast.Source)
	assert.Equal(t, 30, forecast.Days)
	// Flat $10/day history projects flat.
	assert.InDelta(t, 300, forecast.TotalForecast, 1e-3)
}

func TestGetForecast_AuthErrorNeverFallsBack(t *testing.T) {
	var records []entity.CostRecord
	for day := 1; day <= 10; day++ {
		records = append(records, costRecord(day, "Amazon Simple Storage Service", 10))
	}
	repo := &fakeUsageRepository{
		costRecords: records,
		forecastErr: types.E(types.KindUnauthorized, "gateway.FetchCostForecast", errors.New("ce:GetCostForecast denied")),
	}
	uc := newTestUseCase(repo)

	forecast, err := uc.GetForecast(context.Background(), 30)

	assert.Nil(t, forecast)
	assert.Equal(t, types.KindUnauthorized, types.KindOf(err))
}

func TestGetForecast_InvalidHorizon(t *testing.T) {
	repo := &fakeUsageRepository{}
	uc := newTestUseCase(repo)

	_, err := uc.GetForecast(context.Background(), -1)

	assert.Equal(t, types.KindInvalidWindow, types.KindOf(err))
	assert.Zero(t, repo.costCalls.Load())
}

func TestGetFindings_ReportsFailedSections(t *testing.T) {
	repo := &fakeUsageRepository{
		inventory: repository.InventoryResult{
			FailedSections: []entity.ResourceType{entity.ResourceTypeRDSInstance},
		},
	}
	uc := newTestUseCase(repo)

	findings, unavailable, err := uc.GetFindings(context.Background())

	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Equal(t, []string{"findings:rds_instance"}, unavailable)
}

func TestGetCostBreakdown_PropagatesError(t *testing.T) {
	repo := &fakeUsageRepository{
		costErr: types.E(types.KindUpstreamUnavailable, "gateway.FetchCostAndUsage", errors.New("503")),
	}
	uc := newTestUseCase(repo)

	_, err := uc.GetCostBreakdown(context.Background(), 7)

	assert.Equal(t, types.KindUpstreamUnavailable, types.KindOf(err))
}
