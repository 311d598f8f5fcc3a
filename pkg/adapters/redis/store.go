package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/atidraw/pkg/domain"
)

// DefaultPrefix namespaces every key the adapter writes.
const DefaultPrefix = "atidraw:drawing:"

// Store implements ports.DrawingStore using Redis.
//
// Each drawing is a JSON string under <prefix><id>. The sorted set <prefix>index
// orders drawings by creation time; when a TTL is set, <prefix>expiry tracks
// expiration so List can drop index entries whose value already expired.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithTTL sets the expiration for drawings.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for drawings.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock replaces the time source used for expiry bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client returns the underlying Redis client.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) expiryKey() string {
	return s.prefix + "expiry"
}

// Save persists the drawing to Redis.
func (s *Store) Save(ctx context.Context, d *domain.Drawing) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal drawing: %w", err)
	}

	pipe := s.client.TxPipeline()

	// Use 0 for no expiration if ttl is not set.
	pipe.Set(ctx, s.key(d.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(d.CreatedAt.UnixMilli()),
		Member: d.ID,
	})
	if s.ttl > 0 {
		pipe.ZAdd(ctx, s.expiryKey(), backend.Z{
			Score:  float64(s.now().Add(s.ttl).UnixMilli()),
			Member: d.ID,
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the drawing from Redis.
func (s *Store) Load(ctx context.Context, id string) (*domain.Drawing, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrDrawingNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var d domain.Drawing
	if err := json.Unmarshal(val, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drawing: %w", err)
	}
	return &d, nil
}

// Delete removes the drawing.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()

	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	pipe.ZRem(ctx, s.expiryKey(), id)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns a page of drawings, newest first.
func (s *Store) List(ctx context.Context, offset, limit int) ([]*domain.Drawing, int, error) {
	if err := s.prune(ctx); err != nil {
		return nil, 0, err
	}

	total, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count drawings: %w", err)
	}
	if limit <= 0 || int64(offset) >= total {
		return []*domain.Drawing{}, int(total), nil
	}

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list drawings: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Drawing{}, int(total), nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load drawings: %w", err)
	}

	page := make([]*domain.Drawing, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Expired between prune and MGET.
			continue
		}
		var d domain.Drawing
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal drawing %s: %w", ids[i], err)
		}
		page = append(page, &d)
	}
	return page, int(total), nil
}

// prune removes index entries of drawings whose TTL has passed.
func (s *Store) prune(ctx context.Context) error {
	if s.ttl <= 0 {
		return nil
	}

	now := strconv.FormatInt(s.now().UnixMilli(), 10)
	expired, err := s.client.ZRangeByScore(ctx, s.expiryKey(), &backend.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil {
		return fmt.Errorf("failed to prune expired drawings: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}

	members := make([]any, len(expired))
	for i, id := range expired {
		members[i] = id
	}
	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, s.indexKey(), members...)
	pipe.ZRem(ctx, s.expiryKey(), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to prune expired drawings: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
