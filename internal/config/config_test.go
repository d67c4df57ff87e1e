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

	assert.False(t, cfg.SeedSet)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "text", cfg.ReportFormat)
	assert.True(t, cfg.ChartsEnabled)
	assert.InDelta(t, 20.0, cfg.ChartWidthIn, 1e-9)
	assert.InDelta(t, 15.0, cfg.ChartHeightIn, 1e-9)
	assert.Equal(t, 32, cfg.ChartCacheSize)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "air-quality-measurements", cfg.KafkaTopic)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SEED", "42")
	t.Setenv("OUTPUT_DIR", "/tmp/aq")
	t.Setenv("REPORT_FORMAT", "YAML")
	t.Setenv("CHARTS_ENABLED", "false")
	t.Setenv("CHART_WIDTH_IN", "12.5")
	t.Setenv("CHART_HEIGHT_IN", "9")
	t.Setenv("CHART_CACHE_SIZE", "0")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.SeedSet)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "/tmp/aq", cfg.OutputDir)
	assert.Equal(t, "yaml", cfg.ReportFormat)
	assert.False(t, cfg.ChartsEnabled)
	assert.InDelta(t, 12.5, cfg.ChartWidthIn, 1e-9)
	assert.InDelta(t, 9.0, cfg.ChartHeightIn, 1e-9)
	assert.Equal(t, 0, cfg.ChartCacheSize)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SEED", "-3"},
		{"SEED", "abc"},
		{"REPORT_FORMAT", "xml"},
		{"CHARTS_ENABLED", "maybe"},
		{"CHART_WIDTH_IN", "0"},
		{"CHART_HEIGHT_IN", "wide"},
		{"CHART_HEIGHT_IN", "500"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestValidate_AfterOverride(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.ReportFormat = "csv"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_FORMAT")

	cfg.ReportFormat = "json"
	cfg.OutputDir = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTPUT_DIR")
}

func TestLoad_InvalidChartCacheSizeFallsBack(t *testing.T) {
	t.Setenv("CHART_CACHE_SIZE", "lots")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.ChartCacheSize)
}

func TestFromEnv_SkipsValidation(t *testing.T) {
	t.Setenv("REPORT_FORMAT", "xml")
	t.Setenv("KAFKA_ENABLED", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "xml", cfg.ReportFormat)
	assert.True(t, cfg.KafkaEnabled)

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_FORMAT")
}

func TestFromEnv_ParseErrorsStillFail(t *testing.T) {
	t.Setenv("SEED", "abc")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEED")
}
