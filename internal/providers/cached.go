package providers

import (
	"context"
	"fmt"
)

// Store is a key/value response store, satisfied by *cache.Cache.
type Store interface {
	Get(key string) (string, bool)
	Put(key, response string) error
}

// Cached wraps a Model so identical prompts are answered from a Store.
// Errors are never cached, nor are responses the request's Cacheable
// check rejects.
type Cached struct {
	next  Model
	model string
	store Store
}

// NewCached returns m unchanged when store is nil.
func NewCached(m Model, model string, store Store) Model {
	if store == nil {
		return m
	}
	return &Cached{next: m, model: model, store: store}
}

func (c *Cached) Name() string { return c.next.Name() }

func (c *Cached) Generate(ctx context.Context, req Request) (Response, error) {
	key := cacheKey(c.next.Name(), c.model, req)
	if content, ok := c.store.Get(key); ok {
		return Response{Content: content, Cached: true}, nil
	}
	resp, err := c.next.Generate(ctx, req)
	if err != nil {
		return resp, err
	}
	if req.Cacheable != nil && !req.Cacheable(resp.Content) {
		return resp, nil
	}
	// A failed write only costs a future cache miss.
	_ = c.store.Put(key, resp.Content)
	return resp, nil
}

func cacheKey(provider, model string, req Request) string {
	return fmt.Sprintf("%s:%s:%d:%g\x00%s\x00%s",
		provider, model, req.MaxTokens, req.Temperature, req.SystemPrompt, req.UserPrompt)
}
