package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Tracker TrackerConfig
	Browser BrowserConfig
	Logging LoggingConfig
}

type TrackerConfig struct {
	ProductsFile string
	OutputFile   string
	// Delay is the fixed wait between checks; zero means draw a random
	// wait from [DelayMin, DelayMax] on every iteration.
	Delay    time.Duration
	DelayMin time.Duration
	DelayMax time.Duration
	// Limit caps how many queries are processed; zero means no cap.
	Limit int
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Tracker: TrackerConfig{
			ProductsFile: getEnvOrDefault("TRACKER_PRODUCTS_FILE", "your_products.csv"),
			OutputFile:   getEnvOrDefault("TRACKER_OUTPUT_FILE", "historical_products.csv"),
			Delay:        getDurationOrDefault("TRACKER_DELAY", 0),
			DelayMin:     getDurationOrDefault("TRACKER_DELAY_MIN", 5*time.Second),
			DelayMax:     getDurationOrDefault("TRACKER_DELAY_MAX", 15*time.Second),
			Limit:        getIntOrDefault("TRACKER_LIMIT", 0),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", false),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "America/New_York"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-US"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Tracker.DelayMin > c.Tracker.DelayMax {
		return fmt.Errorf("TRACKER_DELAY_MIN cannot be greater than TRACKER_DELAY_MAX")
	}

	if c.Tracker.Limit < 0 {
		return fmt.Errorf("TRACKER_LIMIT cannot be negative")
	}

	if c.Tracker.Delay < 0 {
		return fmt.Errorf("TRACKER_DELAY cannot be negative")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
