package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis under sess:<userID>, each with a TTL.
// It exists for deployments that run more than one bot instance behind the
// webhook; single-instance setups use MemoryStore.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: redis.NewClient(opts), ttl: ttl}, nil
}

var _ Store = (*RedisStore)(nil)

func (r *RedisStore) key(userID string) string { return "sess:" + strings.TrimSpace(userID) }

func (r *RedisStore) Get(ctx context.Context, userID string) (*Session, error) {
	raw, err := r.rdb.Get(ctx, r.key(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	if s == nil || s.UserID == "" {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(s.UserID), raw, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	return r.rdb.Del(ctx, r.key(userID)).Err()
}

func (r *RedisStore) Close() error { return r.rdb.Close() }
