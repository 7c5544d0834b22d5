package database

import (
	"database/sql"
	"fmt"
	"time"

	"familytree/internal/config"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Connect opens the Postgres connection and verifies it with a ping,
// retrying on a fixed interval up to the configured attempt count. Retry
// exists only here, at startup; exhaustion is fatal to the caller and
// per-request query errors are never retried.
func Connect(cfg *config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	interval := cfg.ConnectInterval
	if interval <= 0 {
		interval = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = db.Ping()
		if lastErr == nil {
			logger.Info("Database connected",
				zap.String("host", cfg.Host),
				zap.Int("port", cfg.Port),
				zap.String("database", cfg.Database),
			)
			return db, nil
		}
		logger.Warn("Database not reachable, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("interval", interval),
			zap.Error(lastErr),
		)
		if attempt < attempts {
			time.Sleep(interval)
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}

// Close closes the connection pool.
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
