package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all tool and service settings, populated from environment variables.
type Config struct {
	// Seed drives the generator. SeedSet is false when SEED is unset, in
	// which case callers derive one from the domain clock.
	Seed    uint64
	SeedSet bool

	OutputDir     string
	ReportFormat  string
	ChartsEnabled bool
	ChartWidthIn  float64
	ChartHeightIn float64

	// ChartCacheSize bounds the rendered images kept by the HTTP server.
	ChartCacheSize int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

var reportFormats = []string{"text", "json", "yaml"}

// Load reads configuration from environment variables, applying defaults where
// unset, and validates the result.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv parses the environment without the cross-field checks of Validate.
// Commands that apply overrides, or that only use part of the settings, call
// Validate themselves.
func FromEnv() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OutputDir:       sharedcfg.EnvOrDefault("OUTPUT_DIR", "out"),
		ReportFormat:    strings.ToLower(sharedcfg.EnvOrDefault("REPORT_FORMAT", "text")),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KafkaBrokers:    sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "air-quality-measurements"),
	}

	if s := os.Getenv("SEED"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, errors.New("invalid SEED: must be a non-negative integer")
		}
		cfg.Seed, cfg.SeedSet = seed, true
	}

	if cfg.ChartsEnabled, err = parseBool("CHARTS_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.ChartWidthIn, err = parseInches("CHART_WIDTH_IN", 20); err != nil {
		return nil, err
	}
	if cfg.ChartHeightIn, err = parseInches("CHART_HEIGHT_IN", 15); err != nil {
		return nil, err
	}

	cfg.ChartCacheSize = parseChartCacheSize()

	cfg.KafkaEnabled = len(cfg.KafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.KafkaEnabled = v == "true"
	}
	return cfg, nil
}

// Validate checks the output and sink settings. It is called by Load and by
// callers after applying command-line overrides.
func (c *Config) Validate() error {
	if !isReportFormat(c.ReportFormat) {
		return fmt.Errorf("invalid REPORT_FORMAT %q: must be one of %s", c.ReportFormat, strings.Join(reportFormats, ", "))
	}
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if c.KafkaEnabled && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required")
	}
	return nil
}

func isReportFormat(s string) bool {
	for _, f := range reportFormats {
		if s == f {
			return true
		}
	}
	return false
}

func parseBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}

func parseInches(key string, fallback float64) (float64, error) {
	s := sharedcfg.EnvOrDefault(key, strconv.FormatFloat(fallback, 'f', -1, 64))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || v > 100 {
		return 0, fmt.Errorf("invalid %s: must be a positive number of inches up to 100", key)
	}
	return v, nil
}

func parseChartCacheSize() int {
	if s := os.Getenv("CHART_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 32
}
