package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Fetcher  FetcherConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Crawler  CrawlerConfig
	Notify   NotifyConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type FetcherConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	DesktopAgent string
	MobileAgent  string
	MergeMobile  bool
	CacheTTL     time.Duration
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

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	URL    string
	Stream string
}

type CrawlerConfig struct {
	Interval     time.Duration
	RateLimitMin time.Duration
	RateLimitMax time.Duration
}

type NotifyConfig struct {
	SlackWebhookURL string
	MinPriceDiff    int
	NotifyOnStock   []string
	SkipFirstTime   bool
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Fetcher: FetcherConfig{
			Timeout:      getDurationOrDefault("FETCH_TIMEOUT", 25*time.Second),
			MaxRetries:   getIntOrDefault("FETCH_MAX_RETRIES", 3),
			RetryDelay:   getDurationOrDefault("FETCH_RETRY_DELAY", 5*time.Second),
			DesktopAgent: getEnvOrDefault("FETCH_DESKTOP_AGENT", defaultDesktopAgent),
			MobileAgent:  getEnvOrDefault("FETCH_MOBILE_AGENT", defaultMobileAgent),
			MergeMobile:  getBoolOrDefault("FETCH_MERGE_MOBILE", true),
			CacheTTL:     getDurationOrDefault("FETCH_CACHE_TTL", 10*time.Minute),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "ja-JP,ja;q=0.9,en;q=0.8"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "Asia/Tokyo"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "ja-JP"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "supplier_watcher"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			URL:    getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
			Stream: getEnvOrDefault("REDIS_STREAM", "supplier:changes"),
		},
		Crawler: CrawlerConfig{
			Interval:     getDurationOrDefault("CRAWL_INTERVAL", 15*time.Minute),
			RateLimitMin: getDurationOrDefault("CRAWL_RATE_LIMIT_MIN", 5*time.Second),
			RateLimitMax: getDurationOrDefault("CRAWL_RATE_LIMIT_MAX", 30*time.Second),
		},
		Notify: NotifyConfig{
			SlackWebhookURL: getEnvOrDefault("SLACK_WEBHOOK_URL", ""),
			MinPriceDiff:    getIntOrDefault("MIN_PRICE_DIFF", 100),
			NotifyOnStock:   getStringSliceOrDefault("NOTIFY_ON_STOCK", []string{"IN_STOCK", "LAST_ONE"}),
			SkipFirstTime:   getBoolOrDefault("SKIP_FIRST_TIME", true),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Fetcher.MaxRetries < 1 {
		return fmt.Errorf("FETCH_MAX_RETRIES must be at least 1")
	}

	if c.Crawler.RateLimitMin > c.Crawler.RateLimitMax {
		return fmt.Errorf("CRAWL_RATE_LIMIT_MIN cannot be greater than CRAWL_RATE_LIMIT_MAX")
	}

	if c.Notify.MinPriceDiff < 0 {
		return fmt.Errorf("MIN_PRICE_DIFF cannot be negative")
	}

	return nil
}

// DSN builds the postgres connection string for pgxpool.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
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

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

const (
	defaultDesktopAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultMobileAgent  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)
