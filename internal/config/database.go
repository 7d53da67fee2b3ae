package config

import (
	"fmt"
	"strconv"
	"time"

	"backoffice-backend/internal/infrastructure/database"
)

// LoadDatabaseConfig reads the PostgreSQL settings from the environment
func LoadDatabaseConfig() (*database.DBConfig, error) {
	ints := map[string]int{}
	for key, def := range map[string]string{
		"DB_PORT":            "5432",
		"DB_MAX_CONNECTIONS": "20",
		"DB_MIN_CONNECTIONS": "2",
		"DB_MAX_RETRIES":     "5",
	} {
		v, err := strconv.Atoi(getEnv(key, def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		ints[key] = v
	}

	durations := map[string]time.Duration{}
	for key, def := range map[string]string{
		"DB_MAX_CONN_LIFETIME":   "5m",
		"DB_MAX_CONN_IDLE_TIME":  "1m",
		"DB_HEALTH_CHECK_PERIOD": "1m",
		"DB_RETRY_DELAY":         "1s",
		"DB_CONNECT_TIMEOUT":     "10s",
	} {
		d, err := time.ParseDuration(getEnv(key, def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = d
	}

	return &database.DBConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              ints["DB_PORT"],
		Username:          getEnv("DB_USER", "backoffice"),
		Password:          getEnv("DB_PASSWORD", "secret"),
		DBName:            getEnv("DB_NAME", "backoffice"),
		SSLMode:           getEnv("DB_SSLMODE", "disable"),
		MaxConns:          int32(ints["DB_MAX_CONNECTIONS"]),
		MinConns:          int32(ints["DB_MIN_CONNECTIONS"]),
		MaxConnLifetime:   durations["DB_MAX_CONN_LIFETIME"],
		MaxConnIdleTime:   durations["DB_MAX_CONN_IDLE_TIME"],
		HealthCheckPeriod: durations["DB_HEALTH_CHECK_PERIOD"],
		MaxRetries:        ints["DB_MAX_RETRIES"],
		RetryDelay:        durations["DB_RETRY_DELAY"],
		ConnectTimeout:    durations["DB_CONNECT_TIMEOUT"],
	}, nil
}
