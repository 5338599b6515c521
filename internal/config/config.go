package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for Element Hunter.
type Config struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"   yaml:"crawl"`
	Driver  DriverConfig  `mapstructure:"driver"  yaml:"driver"`
	Output  OutputConfig  `mapstructure:"output"  yaml:"output"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CrawlConfig holds the immutable parameters of one crawl run.
type CrawlConfig struct {
	// URL is the crawl target. Set from the CLI argument, not the config file.
	URL                 string        `mapstructure:"-"                     yaml:"-"`
	MaxDepth            int           `mapstructure:"max_depth"             yaml:"max_depth"`
	MaxPages            int           `mapstructure:"max_pages"             yaml:"max_pages"`
	Delay               time.Duration `mapstructure:"delay"                 yaml:"delay"`
	Timeout             time.Duration `mapstructure:"timeout"               yaml:"timeout"`
	CommonLinkThreshold float64       `mapstructure:"common_link_threshold" yaml:"common_link_threshold"`
	SiteID              string        `mapstructure:"site_id"               yaml:"site_id"`
	SiteName            string        `mapstructure:"site_name"             yaml:"site_name"`
}

// DriverConfig controls the page driver.
type DriverConfig struct {
	Type      string `mapstructure:"type"       yaml:"type"` // browser, static
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	Stealth   bool   `mapstructure:"stealth"    yaml:"stealth"`
}

// OutputConfig controls where the crawl document is written.
type OutputConfig struct {
	Dir             string `mapstructure:"dir"              yaml:"dir"`
	Type            string `mapstructure:"type"             yaml:"type"` // json, mongo
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			MaxDepth:            3,
			MaxPages:            50,
			Delay:               1 * time.Second,
			Timeout:             30 * time.Second,
			CommonLinkThreshold: 0.8,
		},
		Driver: DriverConfig{
			Type: "browser",
		},
		Output: OutputConfig{
			Dir:             ".",
			Type:            "json",
			MongoDatabase:   "elementhunter",
			MongoCollection: "crawls",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
