package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/storage"
)

// prefix namespaces cache entries inside the shared persistence port.
const prefix = "cache:"

type entry struct {
	Value json.RawMessage `json:"value"`
	TS    int64           `json:"ts"`
}

// Cache keeps timestamped copies of server responses so lookups can be
// answered from the last known payload when the network is down. Entries are
// overwritten on every successful fetch and filtered by age at read time;
// stale entries stay in storage until replaced.
type Cache struct {
	store storage.Store
	now   func() time.Time
}

// New builds a Cache over the given persistence port.
func New(store storage.Store) *Cache {
	return &Cache{store: store, now: time.Now}
}

// Put wraps value with the current timestamp and persists it under the
// namespaced key, replacing any previous entry regardless of freshness.
func (c *Cache) Put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	e := entry{Value: raw, TS: c.now().UnixMilli()}
	blob, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.store.Set(ctx, prefix+key, string(blob))
}

// Get returns the stored payload if an entry exists, parses, and is at most
// maxAge old. Age exactly equal to maxAge still counts as fresh. Missing and
// corrupt entries read as absent; stale entries are left in place.
func (c *Cache) Get(ctx context.Context, key string, maxAge time.Duration) (json.RawMessage, bool) {
	blob, ok, err := c.store.Get(ctx, prefix+key)
	if err != nil || !ok {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal([]byte(blob), &e); err != nil || e.TS == 0 {
		return nil, false
	}
	age := c.now().Sub(time.UnixMilli(e.TS))
	if age > maxAge {
		return nil, false
	}
	return e.Value, true
}

// GetInto decodes a fresh entry into dst.
func (c *Cache) GetInto(ctx context.Context, key string, maxAge time.Duration, dst any) bool {
	raw, ok := c.Get(ctx, key, maxAge)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// Sweep removes entries older than maxAge for the given keys. Nothing in the
// client schedules this; long-running hosts may call it to bound storage.
func (c *Cache) Sweep(ctx context.Context, keys []string, maxAge time.Duration) {
	for _, key := range keys {
		if _, ok := c.Get(ctx, key, maxAge); !ok {
			_ = c.store.Delete(ctx, prefix+key)
		}
	}
}
