// Package config provides application configuration loaded from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Vanna    VannaConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigin   string
	SSEKeepalive time.Duration
}

// DatabaseConfig holds the connection string and database behaviour flags.
type DatabaseConfig struct {
	URL        string
	Migrations bool
	Debug      bool
}

// AuthConfig holds token and role resolution settings.
type AuthConfig struct {
	JWTSecret   string
	DefaultRole string
	BcryptCost  int
}

// VannaConfig holds the text-to-SQL service settings. An empty BaseURL
// disables the chat routes.
type VannaConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env          string
	SeedDataPath string
}

// Dev reports whether the app runs outside production.
func (a AppConfig) Dev() bool { return a.Env != "production" }

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "4000"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			CORSOrigin:   getEnv("CORS_ORIGIN", "*"),
			SSEKeepalive: getEnvDuration("SSE_KEEPALIVE", 15*time.Second),
		},
		Database: DatabaseConfig{
			URL:        getEnv("DATABASE_URL", os.Getenv("DATABASE_DSN")),
			Migrations: getEnvBool("MIGRATIONS", false),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", "dev-secret-change-me"),
			DefaultRole: os.Getenv("DEFAULT_ROLE"),
			BcryptCost:  getEnvInt("BCRYPT_COST", 10),
		},
		Vanna: VannaConfig{
			BaseURL: strings.TrimRight(os.Getenv("VANNA_API_BASE_URL"), "/"),
			APIKey:  os.Getenv("VANNA_API_KEY"),
			Timeout: getEnvDuration("VANNA_TIMEOUT", 60*time.Second),
		},
		App: AppConfig{
			Env:          getEnv("APP_ENV", "development"),
			SeedDataPath: getEnv("SEED_DATA_PATH", "data/Analytics_Test_Data.json"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDuration accepts Go durations ("90s", "2m") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if i, err := strconv.Atoi(value); err == nil {
		return time.Duration(i) * time.Second
	}
	return defaultValue
}
