package credential

import (
	"context"
	"sync"
)

// Tier is one persistence layer for string key/value pairs.
type Tier interface {
	Name() string
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryTier keeps values for the lifetime of the process.
// It is the session-scoped tier and the dev fallback for the durable one.
type MemoryTier struct {
	name string

	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryTier constructs an empty in-memory tier.
func NewMemoryTier(name string) *MemoryTier {
	if name == "" {
		name = "memory"
	}
	return &MemoryTier{name: name, values: make(map[string]string)}
}

// Name returns the tier label used in logs.
func (t *MemoryTier) Name() string { return t.name }

// Get returns the stored value for key.
func (t *MemoryTier) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (t *MemoryTier) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key] = value
	return nil
}

// Delete removes key. Missing keys are not an error.
func (t *MemoryTier) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.values, key)
	return nil
}

// Len reports the number of stored keys.
func (t *MemoryTier) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}
