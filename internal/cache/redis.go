package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/data/redisStore"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

const keyPrefix = "answer:"

// Redis shares answers between replicas. Values are stored as JSON and
// expire after ttl.
type Redis[V any] struct {
	store  *redisStore.Store
	ttl    time.Duration
	logger *logger_i.Logger
}

func NewRedis[V any](store *redisStore.Store, ttl time.Duration) *Redis[V] {
	return &Redis[V]{
		store:  store,
		ttl:    ttl,
		logger: logger_i.NewLogger("answer_cache"),
	}
}

func (c *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var v V
	log := c.logger.FromContext(ctx, config.TRACE_ID_KEY)

	raw, err := c.store.Get(ctx, keyPrefix+key)
	if c.store.IsNil(err) {
		return v, false
	} else if err != nil {
		log.Error("Answer cache read failed", "error", err)
		return v, false
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		log.Error("Dropping unreadable cache entry", "error", err)
		return v, false
	}
	return v, true
}

func (c *Redis[V]) Set(ctx context.Context, key string, value V) {
	log := c.logger.FromContext(ctx, config.TRACE_ID_KEY)
	data, err := json.Marshal(value)
	if err != nil {
		log.Error("Error marshalling cache entry", "error", err)
		return
	}
	if err := c.store.Set(ctx, keyPrefix+key, data, c.ttl); err != nil {
		log.Error("Answer cache write failed", "error", err)
	}
}
