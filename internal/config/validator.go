package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "port is required")
	} else if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
	}

	if c.DatabasePath == "" {
		errors = append(errors, "database path is required")
	}

	if c.MatchThreshold <= 0 || c.MatchThreshold > 100 {
		errors = append(errors, fmt.Sprintf("match threshold must be in (0, 100], got %g", c.MatchThreshold))
	}
	if c.BlacklistFrequencyThreshold < 1 {
		errors = append(errors, "blacklist frequency threshold must be at least 1")
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errors = append(errors, fmt.Sprintf("unknown log level: %s", c.LogLevel))
	}

	if c.Enrichment != nil && c.Enrichment.Enabled {
		for name, service := range c.Enrichment.Services {
			if service == nil {
				errors = append(errors, fmt.Sprintf("enrichment service %s has no config", name))
				continue
			}
			if service.Enabled && service.MaxRequests < 1 {
				errors = append(errors, fmt.Sprintf("enrichment service %s: max requests must be at least 1", name))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}
