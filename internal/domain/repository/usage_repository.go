package repository

import (
	"context"
	"time"

	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
)

// InventoryResult is the outcome of one inventory fetch. Records from the
// sources that responded are always returned; FailedSections names the
// resource types whose source failed, so a report can degrade gracefully
// instead of failing outright.
type InventoryResult struct {
	Records        []entity.ResourceRecord
	FailedSections []entity.ResourceType
}

// UsageRepository is the sole point of contact with the upstream billing
// and compute APIs. Implementations must not mutate or cache upstream
// state; every call is a fresh outbound query.
type UsageRepository interface {
	// AccountID identifies the configured account, validating credentials
	// in the process.
	AccountID(ctx context.Context) (string, error)

	// FetchCostAndUsage returns the cost records for the window
	// [start, end) at the given granularity. start must precede end.
	FetchCostAndUsage(ctx context.Context, start, end time.Time, granularity entity.Granularity) ([]entity.CostRecord, error)

	// FetchCostForecast returns the upstream provider's own cost
	// projection for the window [start, end).
	FetchCostForecast(ctx context.Context, start, end time.Time) (*entity.Forecast, error)

	// FetchResourceInventory returns the current resource records for the
	// requested types. A failure of one source is reported through
	// InventoryResult.FailedSections rather than failing the whole fetch;
	// the returned error is non-nil only when every source failed or the
	// failure is a caller error (auth, cancellation).
	FetchResourceInventory(ctx context.Context, resourceTypes []entity.ResourceType) (InventoryResult, error)
}
