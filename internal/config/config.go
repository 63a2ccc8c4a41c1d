package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    zerolog.Level

	Capacity    int
	DataFile    string
	HolidayFile string
	TariffFile  string
	Location    *time.Location

	FlushMaxTries uint

	OTelServiceName    string
	OTelEndpoint       string
	OTelExportInterval time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		DataFile:        getEnv("PARKING_DATA_FILE", "parking_data.csv"),
		HolidayFile:     getEnv("HOLIDAY_FILE", "West_Bengal_Holidays_2025.csv"),
		TariffFile:      getEnv("TARIFF_FILE", ""),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "parking-lot-service"),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}

	capacity, err := getEnvInt("PARKING_CAPACITY", 20)
	if err != nil {
		return nil, err
	}
	cfg.Capacity = capacity

	tries, err := getEnvInt("FLUSH_MAX_TRIES", 3)
	if err != nil {
		return nil, err
	}
	if tries < 1 {
		return nil, fmt.Errorf("FLUSH_MAX_TRIES must be at least 1, got %d", tries)
	}
	cfg.FlushMaxTries = uint(tries)

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	intervalMillis, err := getEnvInt("OTEL_METRIC_EXPORT_INTERVAL", 5000)
	if err != nil {
		return nil, err
	}
	if intervalMillis < 1 {
		return nil, fmt.Errorf("OTEL_METRIC_EXPORT_INTERVAL must be positive, got %d", intervalMillis)
	}
	cfg.OTelExportInterval = time.Duration(intervalMillis) * time.Millisecond

	loc, err := time.LoadLocation(getEnv("PARKING_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid PARKING_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("PARKING_CAPACITY must be positive, got %d", c.Capacity)
	}
	if c.DataFile == "" {
		return fmt.Errorf("PARKING_DATA_FILE is required")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
