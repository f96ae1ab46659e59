package cache

import (
	"context"
	"fmt"

	"github.com/akolanti/profile-rag/internal/domain/document"
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU holds at most capacity entries and evicts the least recently used one
// when full. Get counts as a use.
type LRU[V any] struct {
	entries *lru.Cache[string, V]
}

func NewLRU[V any](capacity int) (*LRU[V], error) {
	entries, err := lru.New[string, V](capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: answer cache capacity %d: %v", document.ErrConfiguration, capacity, err)
	}
	return &LRU[V]{entries: entries}, nil
}

func (c *LRU[V]) Get(ctx context.Context, key string) (V, bool) {
	return c.entries.Get(key)
}

func (c *LRU[V]) Set(ctx context.Context, key string, value V) {
	c.entries.Add(key, value)
}

func (c *LRU[V]) Len() int {
	return c.entries.Len()
}
