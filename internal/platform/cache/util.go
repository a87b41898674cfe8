package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSONStore keeps JSON documents in Redis under a namespace. A nil client
// turns every call into a miss or a no-op.
type JSONStore struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

func NewJSONStore(rdb *redis.Client, ttl time.Duration, namespace string) *JSONStore {
	return &JSONStore{rdb: rdb, ttl: ttl, namespace: namespace}
}

// Enabled reports whether a Redis client is configured.
func (s *JSONStore) Enabled() bool { return s.rdb != nil }

// Key builds a namespaced key from parts.
func (s *JSONStore) Key(parts ...string) string {
	escaped := make([]string, 0, len(parts)+1)
	escaped = append(escaped, s.namespace)
	for _, p := range parts {
		escaped = append(escaped, safe(p))
	}
	return strings.Join(escaped, ":")
}

// Load decodes the value at key into dst and reports a hit. Corrupted
// entries are deleted.
func (s *JSONStore) Load(ctx context.Context, key string, dst any) bool {
	if s.rdb == nil {
		return false
	}
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = s.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// Save stores v at key. Best effort: failures are ignored.
func (s *JSONStore) Save(ctx context.Context, key string, v any) {
	if s.rdb == nil {
		return
	}
	if b, err := json.Marshal(v); err == nil {
		_ = s.rdb.Set(ctx, key, b, s.ttl).Err()
	}
}

// DeleteByPattern deletes all keys matching pattern using SCAN.
func (s *JSONStore) DeleteByPattern(ctx context.Context, pattern string) error {
	if s.rdb == nil {
		return nil
	}
	var cursor uint64
	for {
		keys, cur, err := s.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
