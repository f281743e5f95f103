package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFile_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
region = "eu-west-1"
days_back = 14

[pricing]
ebs_monthly_per_gb = 0.10
`)

	cfg, err := NewConfigRepository().LoadConfigFile(path)

	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 14, cfg.DaysBack)
	assert.InDelta(t, 0.10, cfg.Pricing.EBSMonthlyPerGB, 1e-6)
	// Unnamed settings keep their defaults.
	assert.Equal(t, 30, cfg.ForecastDays)
	assert.Equal(t, ":8000", cfg.ListenAddr)
}

func TestLoadConfigFile_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
region: sa-east-1
staleness_days: 7
report_type:
  - csv
  - pdf
`)

	cfg, err := NewConfigRepository().LoadConfigFile(path)

	require.NoError(t, err)
	assert.Equal(t, "sa-east-1", cfg.Region)
	assert.Equal(t, 7, cfg.StalenessDays)
	assert.Equal(t, []string{"csv", "pdf"}, cfg.ReportType)
}

func TestLoadConfigFile_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"region": "us-west-2", "forecast_days": 60}`)

	cfg, err := NewConfigRepository().LoadConfigFile(path)

	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.Region)
	assert.Equal(t, 60, cfg.ForecastDays)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	repo := NewConfigRepository()

	_, err := repo.LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = repo.LoadConfigFile(t.TempDir())
	assert.Error(t, err)

	_, err = repo.LoadConfigFile(writeFile(t, "config.ini", "region=us-east-1"))
	assert.ErrorContains(t, err, "unsupported config file format")

	_, err = repo.LoadConfigFile(writeFile(t, "broken.yaml", ":\t: ["))
	assert.Error(t, err)
}
