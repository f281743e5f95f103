package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
)

// hoursPerMonth is the 730-hour month convention used in provider pricing.
var hoursPerMonth = decimal.NewFromInt(730)

// instanceHourlyRates holds on-demand us-east-1 Linux rates for the common
// EC2 and RDS instance classes. Classes not listed here fall back to the
// configured flat monthly estimate.
var instanceHourlyRates = map[string]decimal.Decimal{
	"t2.micro":      decimal.NewFromFloat(0.0116),
	"t2.small":      decimal.NewFromFloat(0.023),
	"t2.medium":     decimal.NewFromFloat(0.0464),
	"t3.micro":      decimal.NewFromFloat(0.0104),
	"t3.small":      decimal.NewFromFloat(0.0208),
	"t3.medium":     decimal.NewFromFloat(0.0416),
	"t3.large":      decimal.NewFromFloat(0.0832),
	"m5.large":      decimal.NewFromFloat(0.096),
	"m5.xlarge":     decimal.NewFromFloat(0.192),
	"m5.2xlarge":    decimal.NewFromFloat(0.384),
	"c5.large":      decimal.NewFromFloat(0.085),
	"c5.xlarge":     decimal.NewFromFloat(0.17),
	"r5.large":      decimal.NewFromFloat(0.126),
	"r5.xlarge":     decimal.NewFromFloat(0.252),
	"db.t3.micro":   decimal.NewFromFloat(0.017),
	"db.t3.small":   decimal.NewFromFloat(0.034),
	"db.t3.medium":  decimal.NewFromFloat(0.068),
	"db.m5.large":   decimal.NewFromFloat(0.171),
	"db.m5.xlarge":  decimal.NewFromFloat(0.342),
	"db.r5.large":   decimal.NewFromFloat(0.24),
	"db.r5.xlarge":  decimal.NewFromFloat(0.48),
}

// RateTable converts resource attributes into estimated monthly costs.
// The estimates are coarse; they rank findings, they do not bill anyone.
type RateTable struct {
	cfg types.PricingConfig
}

// NewRateTable builds a rate table from the pricing configuration,
// filling zero values with the built-in defaults.
func NewRateTable(cfg types.PricingConfig) *RateTable {
	def := types.DefaultConfig().Pricing
	if cfg.EBSMonthlyPerGB == 0 {
		cfg.EBSMonthlyPerGB = def.EBSMonthlyPerGB
	}
	if cfg.ElasticIPMonthly == 0 {
		cfg.ElasticIPMonthly = def.ElasticIPMonthly
	}
	if cfg.FlatInstanceMonthly == 0 {
		cfg.FlatInstanceMonthly = def.FlatInstanceMonthly
	}
	return &RateTable{cfg: cfg}
}

// InstanceMonthly estimates the monthly run cost of an instance class:
// hourly rate × 730 hours when the class is known, the configured flat
// estimate otherwise.
func (t *RateTable) InstanceMonthly(instanceClass string) float64 {
	hourly, ok := instanceHourlyRates[instanceClass]
	if !ok {
		return t.cfg.FlatInstanceMonthly
	}
	return hourly.Mul(hoursPerMonth).Round(2).InexactFloat64()
}

// VolumeMonthly estimates the monthly storage cost of a volume:
// size × per-GB monthly rate.
func (t *RateTable) VolumeMonthly(sizeGB int) float64 {
	return decimal.NewFromInt(int64(sizeGB)).
		Mul(decimal.NewFromFloat(t.cfg.EBSMonthlyPerGB)).
		Round(2).InexactFloat64()
}

// ElasticIPMonthly is the flat idle allocation fee for one unassociated
// address.
func (t *RateTable) ElasticIPMonthly() float64 {
	return t.cfg.ElasticIPMonthly
}
