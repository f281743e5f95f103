package analysis

import (
	"time"

	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
)

// Idle-condition reasons. These are stable keys: the recommendation engine
// groups findings on them.
const (
	ReasonStoppedInstance  = "stopped instance still incurs storage and attached-resource cost"
	ReasonUnattachedVolume = "unattached volume incurs storage cost with no compute benefit"
	ReasonUnassociatedEIP  = "unassociated address incurs an idle allocation fee"
	ReasonStoppedDatabase  = "stopped database instance still incurs storage cost"
)

// Resource states as normalized by the gateway.
const (
	StateStopped      = "stopped"
	StateAvailable    = "available"
	StateUnassociated = "unassociated"
)

// Auditor evaluates resource records against a fixed rule table and flags
// idle resources. It is stateless between runs: auditing the same records
// twice yields the same findings.
type Auditor struct {
	rates     *RateTable
	staleness time.Duration
	now       func() time.Time
}

// NewAuditor builds an auditor. stalenessDays is the minimum age a stopped
// compute or database instance must have before it is flagged; zero flags
// immediately.
func NewAuditor(pricing types.PricingConfig, stalenessDays int) *Auditor {
	return &Auditor{
		rates:     NewRateTable(pricing),
		staleness: time.Duration(stalenessDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// Audit emits zero or one finding per record. A record matching no rule is
// silently excluded; that is the normal case for healthy resources.
func (a *Auditor) Audit(resources []entity.ResourceRecord) []entity.Finding {
	findings := make([]entity.Finding, 0)
	for _, r := range resources {
		if f, ok := a.evaluate(r); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

func (a *Auditor) evaluate(r entity.ResourceRecord) (entity.Finding, bool) {
	switch r.ResourceType {
	case entity.ResourceTypeEC2Instance:
		if r.State != StateStopped || !a.stale(r.Metadata.LaunchTime) {
			return entity.Finding{}, false
		}
		return entity.Finding{
			ResourceID:             r.ResourceID,
			ResourceType:           r.ResourceType,
			Reason:                 ReasonStoppedInstance,
			Severity:               entity.SeverityHigh,
			EstimatedMonthlySaving: a.rates.InstanceMonthly(r.Metadata.InstanceClass),
		}, true

	case entity.ResourceTypeEBSVolume:
		if r.State != StateAvailable || r.Metadata.AttachedTo != "" {
			return entity.Finding{}, false
		}
		return entity.Finding{
			ResourceID:             r.ResourceID,
			ResourceType:           r.ResourceType,
			Reason:                 ReasonUnattachedVolume,
			Severity:               entity.SeverityMedium,
			EstimatedMonthlySaving: a.rates.VolumeMonthly(r.Metadata.SizeGB),
		}, true

	case entity.ResourceTypeElasticIP:
		if r.State != StateUnassociated {
			return entity.Finding{}, false
		}
		return entity.Finding{
			ResourceID:             r.ResourceID,
			ResourceType:           r.ResourceType,
			Reason:                 ReasonUnassociatedEIP,
			Severity:               entity.SeverityLow,
			EstimatedMonthlySaving: a.rates.ElasticIPMonthly(),
		}, true

	case entity.ResourceTypeRDSInstance:
		if r.State != StateStopped || !a.stale(r.Metadata.LaunchTime) {
			return entity.Finding{}, false
		}
		return entity.Finding{
			ResourceID:             r.ResourceID,
			ResourceType:           r.ResourceType,
			Reason:                 ReasonStoppedDatabase,
			Severity:               entity.SeverityHigh,
			EstimatedMonthlySaving: a.rates.InstanceMonthly(r.Metadata.InstanceClass),
		}, true
	}

	return entity.Finding{}, false
}

// stale reports whether a resource created at t has existed long enough to
// be flagged. The inventory does not track when the stop happened, so
// resource age is the proxy; an unknown creation time is treated as stale.
func (a *Auditor) stale(t time.Time) bool {
	if a.staleness == 0 || t.IsZero() {
		return true
	}
	return a.now().Sub(t) >= a.staleness
}
