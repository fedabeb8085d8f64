package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	StoreDriver string
	SQLitePath  string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	DatabaseURL      string

	RedditUser     string
	RedditBaseURL  string
	UserAgent      string
	PageLimit      int
	CutoffDate     string
	MaxPosts       int
	MaxRetries     int
	RateLimitMs    int
	MaxConcurrency int
	MaxRetryAfter  time.Duration

	ProxyHost     string
	ProxyPort     string
	ProxyUsername string
	ProxyPassword string
	ProxyProbeURL string

	HTTPPort       int
	RequestTimeout time.Duration

	CSVOutputPath string
	ChromeBin     string
	SnapshotDir   string
	DashboardURL  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		SQLitePath:  getEnv("SQLITE_PATH", "./output/housing.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "housing"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "housing123"),
		PostgresDB:       getEnv("POSTGRES_DB", "ottawa_housing"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),

		RedditUser:     getEnv("REDDIT_USER", "ottawaagent"),
		RedditBaseURL:  getEnv("REDDIT_BASE_URL", "https://old.reddit.com"),
		UserAgent:      getEnv("USER_AGENT", "ottawa-housing-tracker/1.0"),
		PageLimit:      getEnvInt("PAGE_LIMIT", 100),
		CutoffDate:     getEnv("CUTOFF_DATE", "2024-01-01"),
		MaxPosts:       getEnvInt("MAX_POSTS", 0),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 3000),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		MaxRetryAfter:  getEnvDuration("MAX_RETRY_AFTER", 2*time.Minute),

		ProxyHost:     getEnv("PROXY_HOST", ""),
		ProxyPort:     getEnv("PROXY_PORT", ""),
		ProxyUsername: getEnv("PROXY_USERNAME", ""),
		ProxyPassword: getEnv("PROXY_PASSWORD", ""),
		ProxyProbeURL: getEnv("PROXY_PROBE_URL", "http://httpbin.org/ip"),

		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/raw_posts.csv"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		SnapshotDir:   getEnv("SNAPSHOT_DIR", "./output/snapshots"),
		DashboardURL:  getEnv("DASHBOARD_URL", "http://localhost:8080"),
	}
}

// DSN returns the connection string for the configured store driver.
func (c *Config) DSN() string {
	if c.StoreDriver == "sqlite" {
		return c.SQLitePath
	}
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// ProxyURL returns the authenticated proxy URL, or nil when no proxy is
// configured. A partially configured proxy is treated as absent.
func (c *Config) ProxyURL() *url.URL {
	if c.ProxyHost == "" || c.ProxyPort == "" {
		return nil
	}
	u := &url.URL{Scheme: "http", Host: c.ProxyHost + ":" + c.ProxyPort}
	if c.ProxyUsername != "" {
		u.User = url.UserPassword(c.ProxyUsername, c.ProxyPassword)
	}
	return u
}

// Cutoff parses CutoffDate. The zero time means no cutoff.
func (c *Config) Cutoff() time.Time {
	if c.CutoffDate == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", c.CutoffDate)
	if err != nil {
		log.Printf("[config] Ignoring malformed CUTOFF_DATE %q", c.CutoffDate)
		return time.Time{}
	}
	return t
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
