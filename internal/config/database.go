package config

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
)

// PoolConfig sizes the database/sql connection pool
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Pool returns the pool settings of the configuration
func (c *Config) Pool() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// NewPostgresConnection opens a PostgreSQL pool and waits for the server,
// retrying the first ping with exponential backoff for up to maxWait
func NewPostgresConnection(ctx context.Context, dbURL string, pool PoolConfig, maxWait time.Duration) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	configurePool(db, pool)

	if err := pingWithRetry(ctx, db, maxWait); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func configurePool(db *sql.DB, pool PoolConfig) {
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
}

func pingWithRetry(ctx context.Context, db *sql.DB, maxWait time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = maxWait

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}

	notify := func(err error, next time.Duration) {
		slog.Warn("database not ready, retrying",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", next))
	}

	if err := backoff.RetryNotify(ping, backoff.WithContext(b, ctx), notify); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}
