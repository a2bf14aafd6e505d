package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for ribao.
type Config struct {
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Report   ReportConfig   `mapstructure:"report"   yaml:"report"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"  yaml:"fetcher"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	Render   RenderConfig   `mapstructure:"render"   yaml:"render"`
	Deliver  DeliverConfig  `mapstructure:"deliver"  yaml:"deliver"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	AI       AIConfig       `mapstructure:"ai"       yaml:"ai"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// APIConfig holds credentials for the token-gated endpoints (quote,
// holiday, world news).
type APIConfig struct {
	Token string `mapstructure:"token" yaml:"token"`
}

// ReportConfig controls how many entries each section of the report holds.
type ReportConfig struct {
	MaxAnime    int `mapstructure:"max_anime"    yaml:"max_anime"`
	MaxHotwords int `mapstructure:"max_hotwords" yaml:"max_hotwords"`
	MaxHolidays int `mapstructure:"max_holidays" yaml:"max_holidays"`
	MaxNews     int `mapstructure:"max_news"     yaml:"max_news"`
}

// FetcherConfig controls the shared HTTP client.
type FetcherConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// ScheduleConfig controls the daily push loop.
type ScheduleConfig struct {
	Enabled      bool          `mapstructure:"enabled"       yaml:"enabled"`
	FireTime     string        `mapstructure:"fire_time"     yaml:"fire_time"` // "HH:MM" local time
	Destinations []string      `mapstructure:"destinations"  yaml:"destinations"`
	ErrorBackoff time.Duration `mapstructure:"error_backoff" yaml:"error_backoff"`
}

// RenderConfig controls HTML rendering and the screenshot capture.
type RenderConfig struct {
	ResourceDir    string        `mapstructure:"resource_dir"    yaml:"resource_dir"`
	OutputDir      string        `mapstructure:"output_dir"      yaml:"output_dir"`
	ViewportWidth  int           `mapstructure:"viewport_width"  yaml:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height" yaml:"viewport_height"`
	Scale          float64       `mapstructure:"scale"           yaml:"scale"`
	Selector       string        `mapstructure:"selector"        yaml:"selector"`
	BrowserTimeout time.Duration `mapstructure:"browser_timeout" yaml:"browser_timeout"`
}

// DeliverConfig controls image delivery to the chat platform.
type DeliverConfig struct {
	Endpoint    string        `mapstructure:"endpoint"     yaml:"endpoint"`
	AccessToken string        `mapstructure:"access_token" yaml:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"      yaml:"timeout"`
}

// StorageConfig controls where subscription destinations are kept.
type StorageConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"` // file, mongodb
	Path            string `mapstructure:"path"             yaml:"path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// AIConfig controls the optional AI-generated greeting line.
type AIConfig struct {
	Enabled bool   `mapstructure:"enabled"  yaml:"enabled"`
	APIKey  string `mapstructure:"api_key"  yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model"    yaml:"model"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			MaxAnime:    4,
			MaxHotwords: 4,
			MaxHolidays: 3,
			MaxNews:     5,
		},
		Fetcher: FetcherConfig{
			RequestTimeout:  10 * time.Second,
			MaxBodySize:     10 * 1024 * 1024, // 10MB, bounds oversized feeds
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    20,
		},
		Schedule: ScheduleConfig{
			Enabled:      false,
			FireTime:     "08:00",
			ErrorBackoff: time.Hour,
		},
		Render: RenderConfig{
			ResourceDir:    "./res",
			OutputDir:      "./output",
			ViewportWidth:  1156,
			ViewportHeight: 6000,
			Scale:          2,
			Selector:       ".wrapper",
			BrowserTimeout: 60 * time.Second,
		},
		Deliver: DeliverConfig{
			Endpoint: "http://127.0.0.1:3000",
			Timeout:  30 * time.Second,
		},
		Storage: StorageConfig{
			Type:            "file",
			Path:            "./data/subscriptions.json",
			MongoDatabase:   "ribao",
			MongoCollection: "subscriptions",
		},
		AI: AIConfig{
			Enabled: false,
			Model:   "gpt-4o-mini",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
