package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gitenglishhub/prepal/internal/store"
)

// Key scheme:
//
//	prepal:q:<id>            question document (JSON)
//	prepal:qc:<level>:<prep> set of question IDs for the bucket
const (
	questionKeyPrefix = "prepal:q:"
	bucketKeyPrefix   = "prepal:qc:"
)

// RedisRemote is a Remote backed by a shared Redis instance, letting
// multiple installs pool their generated questions.
type RedisRemote struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisRemote creates a RedisRemote from a redis URL
// (e.g. "redis://localhost:6379/0").
func NewRedisRemote(url string) (*RedisRemote, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisRemote{
		client:  redis.NewClient(opts),
		ttl:     30 * 24 * time.Hour,
		timeout: 2 * time.Second,
	}, nil
}

func (r *RedisRemote) Candidates(ctx context.Context, level int, preposition string) ([]store.CachedQuestion, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	bucket := fmt.Sprintf("%s%d:%s", bucketKeyPrefix, level, preposition)
	ids, err := r.client.SMembers(ctx, bucket).Result()
	if err != nil {
		return nil, fmt.Errorf("read bucket: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = questionKeyPrefix + id
	}
	docs, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	out := make([]store.CachedQuestion, 0, len(docs))
	for _, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			// Expired document still referenced by the bucket.
			continue
		}
		var q store.CachedQuestion
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *RedisRemote) Put(ctx context.Context, q store.CachedQuestion) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode question: %w", err)
	}

	bucket := fmt.Sprintf("%s%d:%s", bucketKeyPrefix, q.Level, q.Preposition)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, questionKeyPrefix+q.ID, doc, r.ttl)
	pipe.SAdd(ctx, bucket, q.ID)
	pipe.Expire(ctx, bucket, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write question: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (r *RedisRemote) Close() error {
	return r.client.Close()
}
