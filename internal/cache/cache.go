package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unclebandit/jobreach-backend/internal/model"
)

// Store holds the per-owner client-session state: the application cart and
// the credential-session activity marker. Implementations must be safe for
// concurrent use. Writes are last-write-wins; there is no cross-session
// merge.
type Store interface {
	CartGet(ctx context.Context, owner string) ([]model.CartItem, error)
	CartPut(ctx context.Context, owner string, items []model.CartItem) error
	CartClear(ctx context.Context, owner string) error

	SessionLastActivity(ctx context.Context, owner string) (time.Time, bool, error)
	TouchSession(ctx context.Context, owner string, at time.Time, ttl time.Duration) error
	ClearSession(ctx context.Context, owner string) error
}

// RedisStore implements Store using go-redis/v9.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// The cart is stored as one JSON blob per owner, mirroring the
// single-local-storage-key model it replaces.

func (s *RedisStore) CartGet(ctx context.Context, owner string) ([]model.CartItem, error) {
	raw, err := s.client.Get(ctx, CartKey(owner)).Bytes()
	if err == redis.Nil {
		return []model.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	var items []model.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// A corrupt blob is advisory state: treat as empty rather than fail.
		return []model.CartItem{}, nil
	}
	return items, nil
}

func (s *RedisStore) CartPut(ctx context.Context, owner string, items []model.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, CartKey(owner), raw, 0).Err()
}

func (s *RedisStore) CartClear(ctx context.Context, owner string) error {
	return s.client.Del(ctx, CartKey(owner)).Err()
}

// The session marker stores the last-activity timestamp. The TTL only cleans
// up abandoned keys; the inactivity decision always compares the stored
// timestamp so the threshold is exact.

func (s *RedisStore) SessionLastActivity(ctx context.Context, owner string) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, SessionKey(owner)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

func (s *RedisStore) TouchSession(ctx context.Context, owner string, at time.Time, ttl time.Duration) error {
	return s.client.Set(ctx, SessionKey(owner), at.Format(time.RFC3339Nano), ttl).Err()
}

func (s *RedisStore) ClearSession(ctx context.Context, owner string) error {
	return s.client.Del(ctx, SessionKey(owner)).Err()
}

var _ Store = (*RedisStore)(nil)
