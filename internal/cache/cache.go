package cache

import "context"

// Cache is a best-effort key/value store. Backend failures read as misses
// and writes that fail are dropped, so callers never branch on cache errors.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V)
}

type chain[V any] struct {
	layers []Cache[V]
}

// Chain consults layers in order. A hit in a lower layer is copied into the
// layers above it.
func Chain[V any](layers ...Cache[V]) Cache[V] {
	return &chain[V]{layers: layers}
}

func (c *chain[V]) Get(ctx context.Context, key string) (V, bool) {
	for i, layer := range c.layers {
		v, ok := layer.Get(ctx, key)
		if !ok {
			continue
		}
		for _, upper := range c.layers[:i] {
			upper.Set(ctx, key, v)
		}
		return v, true
	}
	var zero V
	return zero, false
}

func (c *chain[V]) Set(ctx context.Context, key string, value V) {
	for _, layer := range c.layers {
		layer.Set(ctx, key, value)
	}
}
