package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds the whole application configuration, populated from environment variables
type Config struct {
	App    AppConfig
	Redis  RedisConfig
	JWT    JWTConfig
	MinIO  MinIOConfig
	Import ImportConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type MinIOConfig struct {
	Enabled   bool
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// =====================================================
// IMPORT CONFIGURATION
// =====================================================

type ImportConfig struct {
	MaxRows       int           // rows above this limit reject the file
	MaxFileSize   int64         // bytes accepted by the upload endpoint
	SessionTTL    time.Duration // how long a validated run waits for confirmation
	AsyncDefault  bool          // confirm through the queue unless ?async=false
	WorkerConcurr int           // asynq worker concurrency
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Backoffice API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", defaultJWTSecret),
		},
		MinIO: MinIOConfig{
			Enabled:   getEnvBool("MINIO_ENABLED", true),
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "backoffice-imports"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Import: ImportConfig{
			MaxRows:       getEnvInt("IMPORT_MAX_ROWS", 5000),
			MaxFileSize:   int64(getEnvInt("IMPORT_MAX_FILE_MB", 10)) << 20,
			SessionTTL:    getEnvDuration("IMPORT_SESSION_TTL", 30*time.Minute),
			AsyncDefault:  getEnvBool("IMPORT_ASYNC", false),
			WorkerConcurr: getEnvInt("IMPORT_WORKER_CONCURRENCY", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects settings that are unsafe or unusable
func (c *Config) Validate() error {
	if c.Import.MaxRows <= 0 {
		return fmt.Errorf("IMPORT_MAX_ROWS must be positive")
	}
	if c.Import.SessionTTL <= 0 {
		return fmt.Errorf("IMPORT_SESSION_TTL must be positive")
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.MinIO.Enabled && c.MinIO.SecretKey == "minioadmin" {
			return fmt.Errorf("MINIO_SECRET_KEY must be set in production")
		}
	}

	return nil
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(os.Getenv(key))
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
