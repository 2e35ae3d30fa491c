package kv

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by plain Redis strings. Keys are namespaced with
// an optional prefix so several deployments can share one database.
type RedisStore struct {
	rdb       *redis.Client
	prefix    string
	scanCount int64
}

type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces every key, e.g. "edgelink" stores "url:abc" as
// "edgelink:url:abc".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p + ":"
		}
	}
}

// WithScanCount sets the COUNT hint used by List.
func WithScanCount(n int64) RedisOption {
	return func(s *RedisStore) { s.scanCount = n }
}

func NewRedisStore(rdb *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{rdb: rdb, scanCount: 100}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", errors.Wrapf(err, "redis get %s", key)
	}
	return v, nil
}

func (s *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrapf(err, "redis del %s", key)
	}
	return nil
}

// List scans the keyspace. SCAN may return a key more than once, duplicates
// are dropped.
func (s *RedisStore) List(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	seen := make(map[string]struct{})
	iter := s.rdb.Scan(ctx, 0, escapeGlob(s.prefix+prefix)+"*", s.scanCount).Iterator()
	for iter.Next(ctx) {
		key := strings.TrimPrefix(iter.Val(), s.prefix)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "redis scan %s", prefix)
	}
	return keys, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string { return globEscaper.Replace(s) }
