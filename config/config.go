package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Fetch backends selectable through FETCH_BACKEND.
const (
	BackendHTTP   = "http"
	BackendChrome = "chrome"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SitesURL string
	MinPrice int
	MaxPrice int

	WorkersPerCPU  int
	HTTPTimeoutSec int
	UserAgent      string
	FetchBackend   string
	ChromeBin      string

	CachePath   string
	CacheTTLMin int

	ReportCSVPath string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MaxRetries       int

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		SitesURL: getEnv("SITES_URL", "https://sfbay.craigslist.org"),
		MinPrice: getEnvInt("MIN_PRICE", 100),
		MaxPrice: getEnvInt("MAX_PRICE", 30000),

		WorkersPerCPU:  getEnvInt("WORKERS_PER_CPU", 4),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SEC", 30),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		FetchBackend: strings.ToLower(getEnv("FETCH_BACKEND", BackendHTTP)),
		ChromeBin:    getEnv("CHROME_BIN", ""),

		CachePath:   getEnv("CACHE_PATH", defaultCachePath()),
		CacheTTLMin: getEnvInt("CACHE_TTL_MIN", 30),

		ReportCSVPath: getEnv("REPORT_CSV_PATH", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "craigslist"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "craigslist"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// HTTPTimeout returns the per-request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// CacheTTL returns how long a cached response stays fresh.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMin) * time.Minute
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "craigslist", "cache.db")
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
