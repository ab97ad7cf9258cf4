// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront
type Config struct {
	App       AppConfig
	API       APIConfig
	Processor ProcessorConfig
	Session   SessionConfig
	DevServer DevServerConfig
	Logging   LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// APIConfig contains commerce API connection configuration
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ProcessorConfig contains card processor configuration.
// Confirmation calls go straight to the processor, never through the commerce API.
type ProcessorConfig struct {
	BaseURL        string
	PublishableKey string
	Timeout        time.Duration
}

// SessionConfig contains local session state configuration
type SessionConfig struct {
	StatePath string
}

// DevServerConfig contains configuration for the local fake commerce API
type DevServerConfig struct {
	Port          string
	ProcessorPort string
	JWTSecret     string
	TokenExpiry   time.Duration
	BcryptCost    int
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storefront"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:8080/api"),
			Timeout: getEnvAsDuration("API_TIMEOUT", 30*time.Second),
		},
		Processor: ProcessorConfig{
			BaseURL:        getEnv("PROCESSOR_BASE_URL", "http://localhost:8090/v1"),
			PublishableKey: getEnv("PROCESSOR_PUBLISHABLE_KEY", "pk_test_storefront"),
			Timeout:        getEnvAsDuration("PROCESSOR_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			StatePath: getEnv("SESSION_STATE_PATH", defaultStatePath()),
		},
		DevServer: DevServerConfig{
			Port:          getEnv("DEVSERVER_PORT", "8080"),
			ProcessorPort: getEnv("DEVSERVER_PROCESSOR_PORT", "8090"),
			JWTSecret:     getEnv("DEVSERVER_JWT_SECRET", "local-development-secret-do-not-use-in-prod"),
			TokenExpiry:   getEnvAsDuration("DEVSERVER_TOKEN_EXPIRE", 24*time.Hour),
			BcryptCost:    getEnvAsInt("DEVSERVER_BCRYPT_COST", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must be an http(s) URL")
	}
	if c.Processor.BaseURL == "" {
		return fmt.Errorf("PROCESSOR_BASE_URL is required")
	}
	if c.Session.StatePath == "" {
		return fmt.Errorf("SESSION_STATE_PATH is required")
	}
	if len(c.DevServer.JWTSecret) < 16 {
		return fmt.Errorf("DEVSERVER_JWT_SECRET must be at least 16 characters long")
	}
	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront.json"
	}
	return home + "/.storefront.json"
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
