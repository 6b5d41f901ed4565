package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8050, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "weblog.csv", cfg.Dataset.CSVFile)
	assert.Equal(t, 100000, cfg.Dataset.Rows)
	assert.Equal(t, uint64(42), cfg.Dataset.Seed)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.Security.TrustedProxies)
	assert.Equal(t, "localhost:8050", cfg.Address())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_WRITE_TIMEOUT", "45s")
	t.Setenv("DATASET_ROWS", "2500")
	t.Setenv("DATASET_SEED", "7")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 2500, cfg.Dataset.Rows)
	assert.Equal(t, uint64(7), cfg.Dataset.Seed)
	assert.Equal(t, "text", cfg.Logger.Format)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"zero rows", "DATASET_ROWS", "0"},
		{"bad start date", "DATASET_START_DATE", "01/05/2022"},
		{"end before start", "DATASET_END_DATE", "2020-01-01"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"zero burst", "SECURITY_RATE_LIMIT_BURST", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatasetConfig_Window(t *testing.T) {
	d := DatasetConfig{StartDate: "2022-05-01", EndDate: "2025-03-31"}

	start, end, err := d.Window()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), end)
}
