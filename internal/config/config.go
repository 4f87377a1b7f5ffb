package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration, populated from environment
// variables (optionally loaded from .env by the entrypoint).
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Client    ClientConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	URL       URLConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

// DatabaseConfig selects the books repository backend.
type DatabaseConfig struct {
	Driver string // sqlite, postgres
	// SQLitePath is a file path or ":memory:".
	SQLitePath string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Password string
	DB       int
	TTL      time.Duration
}

// ClientConfig is used by bookctl and anything else that talks to the API.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// URLConfig drives POST /url. RedirectHost is the only domain the
// redirection operation accepts, with or without "www.".
type URLConfig struct {
	RedirectHost string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// LoadClientConfig reads only the BOOKIT_API_* variables. bookctl uses it so
// server settings it never reads cannot make it fail.
func LoadClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:   getEnv("BOOKIT_API_URL", "http://localhost:8080"),
		Timeout:   getEnvDuration("BOOKIT_API_TIMEOUT", 10*time.Second),
		RateLimit: getEnvFloat("BOOKIT_API_RPS", 0),
		Burst:     getEnvInt("BOOKIT_API_BURST", 1),
	}
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "BookIT API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			SQLitePath: getEnv("SQLITE_PATH", "bookit.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Client: LoadClientConfig(),
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", true),
			RPS:     getEnvFloat("RATE_LIMIT_RPS", 20),
			Burst:   getEnvInt("RATE_LIMIT_BURST", 40),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		URL: URLConfig{
			RedirectHost: strings.ToLower(getEnv("URL_REDIRECT_HOST", "byfood.com")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the combination of settings is usable.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH must be set when DB_DRIVER=sqlite")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.Redis.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if strings.HasPrefix(c.URL.RedirectHost, "www.") || strings.Contains(c.URL.RedirectHost, "/") {
		return fmt.Errorf("URL_REDIRECT_HOST must be a bare domain, got %q", c.URL.RedirectHost)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
