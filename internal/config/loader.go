package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults from struct
	setDefaults(v, cfg)

	// Environment variable support
	v.SetEnvPrefix("RIBAO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search default locations
		v.SetConfigName("ribao")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".ribao"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.token", cfg.API.Token)

	v.SetDefault("report.max_anime", cfg.Report.MaxAnime)
	v.SetDefault("report.max_hotwords", cfg.Report.MaxHotwords)
	v.SetDefault("report.max_holidays", cfg.Report.MaxHolidays)
	v.SetDefault("report.max_news", cfg.Report.MaxNews)

	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)

	v.SetDefault("schedule.enabled", cfg.Schedule.Enabled)
	v.SetDefault("schedule.fire_time", cfg.Schedule.FireTime)
	v.SetDefault("schedule.destinations", cfg.Schedule.Destinations)
	v.SetDefault("schedule.error_backoff", cfg.Schedule.ErrorBackoff)

	v.SetDefault("render.resource_dir", cfg.Render.ResourceDir)
	v.SetDefault("render.output_dir", cfg.Render.OutputDir)
	v.SetDefault("render.viewport_width", cfg.Render.ViewportWidth)
	v.SetDefault("render.viewport_height", cfg.Render.ViewportHeight)
	v.SetDefault("render.scale", cfg.Render.Scale)
	v.SetDefault("render.selector", cfg.Render.Selector)
	v.SetDefault("render.browser_timeout", cfg.Render.BrowserTimeout)

	v.SetDefault("deliver.endpoint", cfg.Deliver.Endpoint)
	v.SetDefault("deliver.access_token", cfg.Deliver.AccessToken)
	v.SetDefault("deliver.timeout", cfg.Deliver.Timeout)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("ai.enabled", cfg.AI.Enabled)
	v.SetDefault("ai.api_key", cfg.AI.APIKey)
	v.SetDefault("ai.base_url", cfg.AI.BaseURL)
	v.SetDefault("ai.model", cfg.AI.Model)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
