package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values. A validation
// failure is a configuration error: the crawl never starts.
func Validate(cfg *Config) error {
	if cfg.Crawl.MaxDepth < 0 {
		return fmt.Errorf("crawl.max_depth must be >= 0, got %d", cfg.Crawl.MaxDepth)
	}
	if cfg.Crawl.MaxPages < 1 {
		return fmt.Errorf("crawl.max_pages must be >= 1, got %d", cfg.Crawl.MaxPages)
	}
	if cfg.Crawl.Delay < 0 {
		return fmt.Errorf("crawl.delay must be >= 0")
	}
	if cfg.Crawl.Timeout <= 0 {
		return fmt.Errorf("crawl.timeout must be > 0")
	}
	if t := cfg.Crawl.CommonLinkThreshold; t < 0 || t > 1 {
		return fmt.Errorf("crawl.common_link_threshold must be in [0,1], got %g", t)
	}

	if cfg.Driver.Type != "browser" && cfg.Driver.Type != "static" {
		return fmt.Errorf("driver.type must be 'browser' or 'static', got %q", cfg.Driver.Type)
	}

	switch cfg.Output.Type {
	case "json":
		if cfg.Output.Dir == "" {
			return fmt.Errorf("output.dir must not be empty")
		}
	case "mongo":
		if cfg.Output.MongoURI == "" {
			return fmt.Errorf("output.mongo_uri is required for mongo output")
		}
		if cfg.Output.MongoDatabase == "" || cfg.Output.MongoCollection == "" {
			return fmt.Errorf("output.mongo_database and output.mongo_collection must not be empty")
		}
	default:
		return fmt.Errorf("output.type %q is not supported (valid: json, mongo)", cfg.Output.Type)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is valid as a crawl target.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
