package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/summarihq/usagekit/pkg/usagekit"
)

// setupTestRedis creates a Redis client for testing.
// Requires Redis running on localhost:6379; skips otherwise.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use DB 15 for testing
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test database: %v", err)
	}

	return client
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		client  redis.UniversalClient
		config  Config
		wantErr bool
	}{
		{
			name:    "nil client",
			client:  nil,
			config:  DefaultConfig(),
			wantErr: true,
		},
		{
			name:    "valid client with default config",
			client:  redis.NewClient(&redis.Options{Addr: "localhost:6379"}),
			config:  DefaultConfig(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.client, tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStorage_LoadNotFound(t *testing.T) {
	client := setupTestRedis(t)
	storage, err := New(client, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = storage.Load(context.Background(), "missing")
	if err != usagekit.ErrRecordNotFound {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestStorage_SaveLoadClear(t *testing.T) {
	client := setupTestRedis(t)
	storage, err := New(client, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	payload := []byte(`{"count":1,"lastReset":"2026-08-29","isPremium":false}`)
	if err := storage.Save(ctx, "u1", payload); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := storage.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Expected %s, got %s", payload, got)
	}

	if err := storage.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := storage.Load(ctx, "u1"); err != usagekit.ErrRecordNotFound {
		t.Errorf("Expected ErrRecordNotFound after Clear, got %v", err)
	}
}

func TestStorage_Update(t *testing.T) {
	client := setupTestRedis(t)
	storage, err := New(client, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	got, err := storage.Update(ctx, "u1", func(current []byte) ([]byte, error) {
		if current != nil {
			t.Errorf("Expected nil current on first update, got %s", current)
		}
		return []byte(`{"count":1}`), nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if string(got) != `{"count":1}` {
		t.Errorf("Unexpected Update result: %s", got)
	}

	// No-op update leaves the stored value intact
	got, err = storage.Update(ctx, "u1", func(current []byte) ([]byte, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if string(got) != `{"count":1}` {
		t.Errorf("Expected unchanged payload, got %s", got)
	}
}

func TestStorage_ConcurrentUpdates(t *testing.T) {
	client := setupTestRedis(t)
	storage, err := New(client, Config{MaxRetries: 200})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	const goroutines = 20

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := storage.Update(ctx, "u1", func(current []byte) ([]byte, error) {
				count := 0
				if current != nil {
					if _, err := fmt.Sscanf(string(current), "%d", &count); err != nil {
						return nil, err
					}
				}
				return []byte(fmt.Sprintf("%d", count+1)), nil
			})
			if err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := storage.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != fmt.Sprintf("%d", goroutines) {
		t.Errorf("Expected %d after concurrent updates, got %s", goroutines, got)
	}
}
