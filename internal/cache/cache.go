// Package cache provides the key/value stores used to remember Jira lookups
// between calls.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores opaque byte values with a per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type entry struct {
	value      []byte
	expiration time.Time
}

// Memory is a thread-safe in-process cache with TTL.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]entry),
		now:   time.Now,
	}
}

// WithClock replaces the time source; used by tests to step past a TTL.
func (c *Memory) WithClock(now func() time.Time) *Memory {
	c.now = now
	return c
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiration) {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{
		value:      append([]byte(nil), value...),
		expiration: c.now().Add(ttl),
	}
	return nil
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Clear removes all entries.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]entry)
}
