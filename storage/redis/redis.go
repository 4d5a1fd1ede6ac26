// Package redis provides a Redis implementation of the usagekit.Storage
// interface. Update uses optimistic locking (WATCH/MULTI) so concurrent
// check-and-increment attempts for the same identity serialize without
// global coordination.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/summarihq/usagekit/pkg/usagekit"
)

// Storage implements usagekit.Storage using Redis.
type Storage struct {
	client redis.UniversalClient
	config Config
}

// Config holds Redis storage configuration.
type Config struct {
	// KeyPrefix is prepended to all Redis keys (default: "usagekit:")
	KeyPrefix string

	// RecordTTL is the TTL for usage record keys (0 = no expiration).
	// Premium grants live in the same record, so only set a TTL when
	// entitlements are reconstructed from the billing provider.
	RecordTTL time.Duration

	// MaxRetries is the maximum number of optimistic locking attempts
	// for Update (default: 5)
	MaxRetries int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:  "usagekit:",
		RecordTTL:  0,
		MaxRetries: 5,
	}
}

// New creates a new Redis storage adapter.
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring.
func New(client redis.UniversalClient, config Config) (*Storage, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	// Set defaults
	if config.KeyPrefix == "" {
		config.KeyPrefix = "usagekit:"
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 5
	}

	return &Storage{
		client: client,
		config: config,
	}, nil
}

// Load implements usagekit.Storage.
func (s *Storage) Load(ctx context.Context, identity string) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.key(identity)).Bytes()
	if err == redis.Nil {
		return nil, usagekit.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return payload, nil
}

// Save implements usagekit.Storage.
func (s *Storage) Save(ctx context.Context, identity string, payload []byte) error {
	if err := s.client.Set(ctx, s.key(identity), payload, s.config.RecordTTL).Err(); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Clear implements usagekit.Storage.
func (s *Storage) Clear(ctx context.Context, identity string) error {
	if err := s.client.Del(ctx, s.key(identity)).Err(); err != nil {
		return fmt.Errorf("failed to clear record: %w", err)
	}
	return nil
}

// Update implements usagekit.Storage using WATCH-based optimistic locking.
// If the key changes between the read and the write the transaction is
// retried, up to MaxRetries attempts.
func (s *Storage) Update(ctx context.Context, identity string, fn usagekit.UpdateFunc) ([]byte, error) {
	key := s.key(identity)
	var result []byte

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			result = current
			return nil
		}
		result = next

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.config.RecordTTL)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Key changed under us, retry
			continue
		}
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	return nil, fmt.Errorf("failed to update record after %d attempts: %w",
		s.config.MaxRetries, redis.TxFailedErr)
}

// key builds the Redis key for an identity.
func (s *Storage) key(identity string) string {
	return s.config.KeyPrefix + "record:" + identity
}
