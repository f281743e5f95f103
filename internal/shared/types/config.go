package types

import "time"

// PricingConfig holds the rate assumptions used to estimate monthly savings
// for idle resources. Zero values fall back to the built-in defaults.
type PricingConfig struct {
	EBSMonthlyPerGB     float64 `json:"ebs_monthly_per_gb" yaml:"ebs_monthly_per_gb" toml:"ebs_monthly_per_gb"`
	ElasticIPMonthly    float64 `json:"elastic_ip_monthly" yaml:"elastic_ip_monthly" toml:"elastic_ip_monthly"`
	FlatInstanceMonthly float64 `json:"flat_instance_monthly" yaml:"flat_instance_monthly" toml:"flat_instance_monthly"`
}

// Config represents the application configuration that can be loaded from a
// TOML, YAML or JSON file and overridden by CLI flags.
type Config struct {
	// AWS credential scope. Empty key/secret means the default chain.
	AccessKey string `json:"access_key" yaml:"access_key" toml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" toml:"secret_key"`
	Region    string `json:"region" yaml:"region" toml:"region"`

	// Report window and forecast horizon, in days.
	DaysBack     int `json:"days_back" yaml:"days_back" toml:"days_back"`
	ForecastDays int `json:"forecast_days" yaml:"forecast_days" toml:"forecast_days"`

	// StalenessDays is the minimum number of days a compute or database
	// instance must have existed before a stopped state is flagged.
	// Zero flags immediately.
	StalenessDays int `json:"staleness_days" yaml:"staleness_days" toml:"staleness_days"`

	// UpstreamTimeout bounds each upstream API call.
	UpstreamTimeout time.Duration `json:"upstream_timeout" yaml:"upstream_timeout" toml:"upstream_timeout"`

	Pricing PricingConfig `json:"pricing" yaml:"pricing" toml:"pricing"`

	// HTTP server settings for serve mode.
	ListenAddr string `json:"listen_addr" yaml:"listen_addr" toml:"listen_addr"`

	// Report export settings for one-shot mode.
	ReportName string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir        string   `json:"dir" yaml:"dir" toml:"dir"`
}

// DefaultConfig returns the configuration used when no file or flag says
// otherwise.
func DefaultConfig() Config {
	return Config{
		Region:          "us-east-1",
		DaysBack:        30,
		ForecastDays:    30,
		StalenessDays:   0,
		UpstreamTimeout: 30 * time.Second,
		ListenAddr:      ":8000",
		Pricing: PricingConfig{
			EBSMonthlyPerGB:     0.08,
			ElasticIPMonthly:    3.60,
			FlatInstanceMonthly: 50.00,
		},
	}
}
