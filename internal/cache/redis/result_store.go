package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/pricelab/internal/config"
	"github.com/davidbz/pricelab/internal/observability"
	"github.com/davidbz/pricelab/internal/simulator"
)

const (
	defaultKeyPrefix = "pricelab:session:"
	fieldData        = "data"
	fieldSavedAt     = "saved_at"
)

// ResultStore keeps session snapshots in Redis hashes that expire after ttl.
type ResultStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewClient creates a Redis client from the connection settings.
func NewClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewResultStore creates a Redis-backed result store. A zero ttl keeps
// snapshots forever.
func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    ttl,
	}
}

// Key returns the hash key holding a session's snapshot.
func (s *ResultStore) Key(sessionID string) string {
	return s.prefix + sessionID
}

// Load returns the stored snapshot or simulator.ErrNoResult.
func (s *ResultStore) Load(ctx context.Context, sessionID string) (simulator.Snapshot, error) {
	data, err := s.client.HGet(ctx, s.Key(sessionID), fieldData).Bytes()
	if errors.Is(err, redis.Nil) {
		return simulator.Snapshot{}, simulator.ErrNoResult
	}
	if err != nil {
		return simulator.Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snapshot simulator.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return simulator.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return snapshot, nil
}

// Save overwrites the session snapshot and refreshes its expiry.
func (s *ResultStore) Save(ctx context.Context, snapshot simulator.Snapshot) error {
	if snapshot.SessionID == "" {
		return errors.New("session id cannot be empty")
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := s.Key(snapshot.SessionID)
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, fieldData, data, fieldSavedAt, time.Now().Unix())
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	observability.FromContext(ctx).Debug("snapshot stored",
		observability.String("key", key),
		observability.Int("size", len(data)))

	return nil
}
