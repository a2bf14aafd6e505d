package config

import (
	"fmt"
	"net/url"
	"regexp"
)

var (
	fireTimePattern    = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)
	destinationPattern = regexp.MustCompile(`\d+$`)
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Report.MaxAnime < 0 {
		return fmt.Errorf("report.max_anime must be >= 0, got %d", cfg.Report.MaxAnime)
	}
	if cfg.Report.MaxHotwords < 0 {
		return fmt.Errorf("report.max_hotwords must be >= 0, got %d", cfg.Report.MaxHotwords)
	}
	if cfg.Report.MaxHolidays < 0 {
		return fmt.Errorf("report.max_holidays must be >= 0, got %d", cfg.Report.MaxHolidays)
	}
	if cfg.Report.MaxNews < 0 {
		return fmt.Errorf("report.max_news must be >= 0, got %d", cfg.Report.MaxNews)
	}

	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	// The fire time is validated loosely here; a bad value at runtime only
	// degrades to the default, it never stops the loop.
	if cfg.Schedule.Enabled && !fireTimePattern.MatchString(cfg.Schedule.FireTime) {
		return fmt.Errorf("schedule.fire_time must be HH:MM, got %q", cfg.Schedule.FireTime)
	}
	if cfg.Schedule.ErrorBackoff <= 0 {
		return fmt.Errorf("schedule.error_backoff must be > 0")
	}
	for _, d := range cfg.Schedule.Destinations {
		if !destinationPattern.MatchString(d) {
			return fmt.Errorf("schedule destination %q has no numeric group ID", d)
		}
	}

	if cfg.Render.ViewportWidth <= 0 || cfg.Render.ViewportHeight <= 0 {
		return fmt.Errorf("render viewport must be positive, got %dx%d",
			cfg.Render.ViewportWidth, cfg.Render.ViewportHeight)
	}
	if cfg.Render.Scale <= 0 {
		return fmt.Errorf("render.scale must be > 0")
	}
	if cfg.Render.Selector == "" {
		return fmt.Errorf("render.selector must not be empty")
	}

	if cfg.Deliver.Endpoint != "" {
		if _, err := url.Parse(cfg.Deliver.Endpoint); err != nil {
			return fmt.Errorf("invalid deliver.endpoint %q: %w", cfg.Deliver.Endpoint, err)
		}
	}

	if cfg.Storage.Type != "file" && cfg.Storage.Type != "mongodb" {
		return fmt.Errorf("storage.type must be 'file' or 'mongodb', got %q", cfg.Storage.Type)
	}
	if cfg.Storage.Type == "mongodb" && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level %q is not supported (valid: debug, info, warn, error)", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}
