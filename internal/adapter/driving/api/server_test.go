package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hydernasirr/aws-finops-2/internal/application/usecase"
	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
	"github.com/hydernasirr/aws-finops-2/internal/domain/repository"
	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
)

type stubUsageRepository struct {
	costRecords []entity.CostRecord
	costErr     error
	forecast    *entity.Forecast
	forecastErr error
	inventory   repository.InventoryResult
	invErr      error
}

func (s *stubUsageRepository) AccountID(ctx context.Context) (string, error) {
	return "123456789012", nil
}

func (s *stubUsageRepository) FetchCostAndUsage(ctx context.Context, start, end time.Time, granularity entity.Granularity) ([]entity.CostRecord, error) {
	return s.costRecords, s.costErr
}

func (s *stubUsageRepository) FetchCostForecast(ctx context.Context, start, end time.Time) (*entity.Forecast, error) {
	return s.forecast, s.forecastErr
}

func (s *stubUsageRepository) FetchResourceInventory(ctx context.Context, resourceTypes []entity.ResourceType) (repository.InventoryResult, error) {
	return s.inventory, s.invErr
}

func newTestServer(repo repository.UsageRepository) *Server {
	uc := usecase.NewReportUseCase(repo, types.DefaultConfig(), zap.NewNop())
	return NewServer(uc, 30, zap.NewNop())
}

func doRequest(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubUsageRepository{})

	rec, body := doRequest(t, s, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestCostsByService(t *testing.T) {
	s := newTestServer(&stubUsageRepository{
		costRecords: []entity.CostRecord{
			{Category: "Amazon Simple Storage Service", Date: time.Now().UTC(), Amount: 5},
		},
	})

	rec, body := doRequest(t, s, "/api/costs/by-service?days=7")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 5, body["total"].(float64), 1e-6)
	assert.Len(t, body["services"], 1)
}

func TestDaysParamValidation(t *testing.T) {
	s := newTestServer(&stubUsageRepository{})

	for _, q := range []string{"days=0", "days=-3", "days=nope"} {
		rec, _ := doRequest(t, s, "/api/costs/by-service?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthenticated", types.E(types.KindUnauthenticated, "op", errors.New("x")), http.StatusUnauthorized},
		{"unauthorized", types.E(types.KindUnauthorized, "op", errors.New("x")), http.StatusForbidden},
		{"upstream", types.E(types.KindUpstreamUnavailable, "op", errors.New("x")), http.StatusServiceUnavailable},
		{"unknown", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&stubUsageRepository{costErr: tt.err})

			rec, body := doRequest(t, s, "/api/costs/daily")

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestForecastInsufficientHistory(t *testing.T) {
	s := newTestServer(&stubUsageRepository{
		costRecords: []entity.CostRecord{
			{Category: "Amazon Simple Storage Service", Date: time.Now().UTC().AddDate(0, 0, -1), Amount: 5},
		},
		forecastErr: types.E(types.KindInsufficientHistory, "op", errors.New("4 days of history")),
	})

	rec, body := doRequest(t, s, "/api/forecast?days=30")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient_history", body["error"])
}

func TestUnusedResources(t *testing.T) {
	s := newTestServer(&stubUsageRepository{
		inventory: repository.InventoryResult{
			Records: []entity.ResourceRecord{
				{ResourceID: "i-abc", ResourceType: entity.ResourceTypeEC2Instance, State: "stopped"},
			},
			FailedSections: []entity.ResourceType{entity.ResourceTypeElasticIP},
		},
	})

	rec, body := doRequest(t, s, "/api/optimization/unused-resources")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1, body["count"].(float64), 1e-6)
	assert.Contains(t, body["unavailable_sections"], "findings:elastic_ip")
}

func TestRecommendationsEmptyInventory(t *testing.T) {
	s := newTestServer(&stubUsageRepository{})

	rec, body := doRequest(t, s, "/api/optimization/recommendations")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0, body["count"].(float64), 1e-6)
}
