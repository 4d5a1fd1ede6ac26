// Package postgres provides a PostgreSQL implementation of the
// usagekit.Storage interface. Update runs inside a transaction with
// SELECT ... FOR UPDATE so concurrent check-and-increment attempts for the
// same identity serialize at the row level.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/summarihq/usagekit/pkg/usagekit"
)

// Storage implements usagekit.Storage using PostgreSQL.
type Storage struct {
	pool   *pgxpool.Pool
	config Config
}

// Config holds PostgreSQL storage configuration.
type Config struct {
	// ConnectionString is the PostgreSQL connection string
	ConnectionString string

	// Pool configuration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// New creates a new PostgreSQL storage adapter.
func New(ctx context.Context, config Config) (*Storage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Storage{
		pool:   pool,
		config: config,
	}, nil
}

// Close closes the PostgreSQL connection pool.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the usage_records table if it does not exist.
func (s *Storage) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS usage_records (
			identity   TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create usage_records table: %w", err)
	}
	return nil
}

// Load implements usagekit.Storage.
func (s *Storage) Load(ctx context.Context, identity string) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM usage_records WHERE identity = $1`,
		identity).Scan(&payload)

	if err == pgx.ErrNoRows {
		return nil, usagekit.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return payload, nil
}

// Save implements usagekit.Storage.
func (s *Storage) Save(ctx context.Context, identity string, payload []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO usage_records (identity, payload, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (identity) DO UPDATE SET
				payload = EXCLUDED.payload,
				updated_at = EXCLUDED.updated_at`,
		identity, payload)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Clear implements usagekit.Storage.
func (s *Storage) Clear(ctx context.Context, identity string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM usage_records WHERE identity = $1`, identity)
	if err != nil {
		return fmt.Errorf("failed to clear record: %w", err)
	}
	return nil
}

// Update implements usagekit.Storage using a row lock for per-identity
// mutual exclusion.
func (s *Storage) Update(ctx context.Context, identity string, fn usagekit.UpdateFunc) ([]byte, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	// Advisory lock covers the first access, when there is no row yet for
	// FOR UPDATE to latch onto.
	_, err = tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire identity lock: %w", err)
	}

	var current []byte
	err = tx.QueryRow(ctx,
		`SELECT payload FROM usage_records WHERE identity = $1 FOR UPDATE`,
		identity).Scan(&current)
	if err == pgx.ErrNoRows {
		current = nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to lock record: %w", err)
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		// Nothing to write; release the lock
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return current, nil
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO usage_records (identity, payload, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (identity) DO UPDATE SET
				payload = EXCLUDED.payload,
				updated_at = EXCLUDED.updated_at`,
		identity, next)
	if err != nil {
		return nil, fmt.Errorf("failed to write record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return next, nil
}
