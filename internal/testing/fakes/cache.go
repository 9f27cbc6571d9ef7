package fakes

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"linkpage-be/internal/cache"
)

// Cache is an in-memory cache.Cache. Expirations are recorded but not enforced.
type Cache struct {
	mu   sync.Mutex
	Data map[string]string
	TTLs map[string]time.Duration

	// Err, when set, is returned by every method
	Err error
}

var _ cache.Cache = (*Cache)(nil)

func NewCache() *Cache {
	return &Cache{
		Data: make(map[string]string),
		TTLs: make(map[string]time.Duration),
	}
}

// Has reports whether key is currently stored
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.Data[key]
	return ok
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	val, ok := c.Data[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Data[key] = value
	c.TTLs[key] = expiration
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	for _, k := range keys {
		delete(c.Data, k)
		delete(c.TTLs, k)
	}
	return nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, string(data), expiration)
}

func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (c *Cache) Close() error { return nil }
