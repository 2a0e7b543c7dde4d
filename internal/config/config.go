package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"accpipeline/enrichment"
	"accpipeline/registry"
)

// Config is the full pipeline configuration.
type Config struct {
	// Server
	Port string `json:"port"`

	// Tracker database
	DatabasePath string `json:"database_path"`

	// Matching
	MatchThreshold              float64 `json:"match_threshold"`
	BlacklistFrequencyThreshold int     `json:"blacklist_frequency_threshold"`

	// Logging
	LogLevel string `json:"log_level"`

	// Contact enrichment
	Enrichment *EnrichmentConfig `json:"enrichment"`

	// Corporation registry crawler
	Registry *registry.ClientConfig `json:"registry"`
}

// EnrichmentConfig groups the provider configs and the shared cache.
type EnrichmentConfig struct {
	Enabled  bool                                  `json:"enabled"`
	Services map[string]*enrichment.EnricherConfig `json:"services"`
	Cache    *enrichment.CacheConfig               `json:"cache"`
}

// Load reads configuration from a JSON file when path is non-empty,
// then applies environment overrides on top. With an empty path the
// environment alone drives the config.
func Load(path string) (*Config, error) {
	config := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func defaults() *Config {
	return &Config{
		Port:                        "8080",
		DatabasePath:                "tracker.db",
		MatchThreshold:              85,
		BlacklistFrequencyThreshold: 3,
		LogLevel:                    "INFO",
		Enrichment: &EnrichmentConfig{
			Enabled: true,
			Services: map[string]*enrichment.EnricherConfig{
				"batchdata": {
					BaseURL:     "https://api.batchdata.com",
					Timeout:     30 * time.Second,
					MaxRequests: 60,
					Priority:    1,
				},
				"assessor": {
					Timeout:     20 * time.Second,
					MaxRequests: 120,
					Priority:    2,
				},
			},
			Cache: &enrichment.CacheConfig{
				Enabled:         true,
				TTL:             24 * time.Hour,
				CleanupInterval: time.Hour,
			},
		},
		Registry: &registry.ClientConfig{
			Timeout:     30 * time.Second,
			MaxRequests: 30,
			MaxRetries:  3,
		},
	}
}

func applyEnv(config *Config) {
	config.Port = getEnv("SERVER_PORT", config.Port)
	config.DatabasePath = getEnv("DATABASE_PATH", config.DatabasePath)
	config.MatchThreshold = getEnvFloat("MATCH_THRESHOLD", config.MatchThreshold)
	config.BlacklistFrequencyThreshold = getEnvInt("BLACKLIST_FREQUENCY_THRESHOLD", config.BlacklistFrequencyThreshold)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)

	if config.Enrichment != nil {
		if batchdata, ok := config.Enrichment.Services["batchdata"]; ok {
			batchdata.APIKey = getEnv("BATCHDATA_API_KEY", batchdata.APIKey)
			batchdata.BaseURL = getEnv("BATCHDATA_BASE_URL", batchdata.BaseURL)
			batchdata.Timeout = getEnvDuration("BATCHDATA_TIMEOUT", batchdata.Timeout)
			batchdata.MaxRequests = getEnvInt("BATCHDATA_MAX_REQUESTS", batchdata.MaxRequests)
			batchdata.Enabled = batchdata.APIKey != ""
		}
		if assessor, ok := config.Enrichment.Services["assessor"]; ok {
			assessor.BaseURL = getEnv("ASSESSOR_BASE_URL", assessor.BaseURL)
			assessor.Timeout = getEnvDuration("ASSESSOR_TIMEOUT", assessor.Timeout)
			assessor.Enabled = assessor.BaseURL != ""
		}
	}

	if config.Registry != nil {
		config.Registry.BaseURL = getEnv("REGISTRY_BASE_URL", config.Registry.BaseURL)
		config.Registry.MaxRequests = getEnvInt("REGISTRY_MAX_REQUESTS", config.Registry.MaxRequests)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
