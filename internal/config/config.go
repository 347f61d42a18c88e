package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir         string
	PagesFile       string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	WarmupOnStart   bool

	// Table store settings.
	TableCacheSize int
	TableCacheTTL  time.Duration

	// Transform parameters.
	RollingWindow     int
	RollingMinPeriods int
	BandRoundTo       float64

	// Optional snapshot publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("TABLE_CACHE_SIZE", 64)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("TABLE_CACHE_TTL", "0s"))
	if err != nil || cacheTTL < 0 {
		return nil, errors.New("invalid TABLE_CACHE_TTL: must be a non-negative duration")
	}

	window, err := parsePositiveInt("ROLLING_WINDOW", 30)
	if err != nil {
		return nil, err
	}

	minPeriods, err := strconv.Atoi(sharedcfg.EnvOrDefault("ROLLING_MIN_PERIODS", "1"))
	if err != nil || minPeriods < 0 || minPeriods > window {
		return nil, errors.New("invalid ROLLING_MIN_PERIODS: must be between 0 and ROLLING_WINDOW")
	}

	roundTo, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("BAND_ROUND_TO", "10"), 64)
	if err != nil || roundTo <= 0 {
		return nil, errors.New("invalid BAND_ROUND_TO: must be a positive number")
	}

	warmup, err := parseBool("WARMUP_ON_START", true)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         sharedcfg.EnvOrDefault("DATA_DIR", "./data"),
		PagesFile:       os.Getenv("PAGES_FILE"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		WarmupOnStart:   warmup,

		TableCacheSize: cacheSize,
		TableCacheTTL:  cacheTTL,

		RollingWindow:     window,
		RollingMinPeriods: minPeriods,
		BandRoundTo:       roundTo,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "dashboard-snapshots"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSnapshotTopic == "" {
			return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("invalid " + key + ": must be a positive integer")
	}
	return n, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("invalid " + key + ": must be true or false")
	}
	return b, nil
}
