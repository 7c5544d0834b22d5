package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the familytree-server configuration, loaded from the
// environment with documented defaults.
type Config struct {
	HTTP struct {
		Addr      string
		StaticDir string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Log       struct {
		Level  string
		Format string
	}
}

// DatabaseConfig describes the Postgres connection. ConnectAttempts and
// ConnectInterval bound the startup retry loop; per-request errors are
// never retried.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConns        int
	MaxIdle         int
	ConnectAttempts int
	ConnectInterval time.Duration
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":3000")
	cfg.HTTP.StaticDir = getEnv("STATIC_DIR", "web")

	// When DB is disabled the server runs on a seeded in-memory store so the
	// client can be exercised without Postgres.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "familytree")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)
	cfg.Database.ConnectAttempts = parseInt(getEnv("DB_CONNECT_ATTEMPTS", "10"), 10)
	cfg.Database.ConnectInterval = parseDuration(getEnv("DB_CONNECT_INTERVAL", "3s"), 3*time.Second)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
