package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ryangomba/abunco/internal/domain"
)

// RecordCache is a request-scoped flat mapping from record id to record.
// It lives for exactly one incoming GraphQL operation: created empty at
// context construction, discarded when the request finishes. No eviction,
// no TTL, no size bound.
//
// The GraphQL engine may resolve fields concurrently, so reads and writes
// can race within a request; entries are immutable snapshots and the last
// write wins. FetchOnce collapses concurrent fetches for the same uncached
// id into a single upstream call.
type RecordCache struct {
	mu      sync.RWMutex
	records map[string]domain.Record
	group   singleflight.Group
}

func New() *RecordCache {
	return &RecordCache{
		records: make(map[string]domain.Record),
	}
}

// Set stores a record keyed by its id, overwriting any prior entry.
func (c *RecordCache) Set(record domain.Record) {
	c.mu.Lock()
	c.records[record.RecordID()] = record
	c.mu.Unlock()
}

// SetMany applies Set to each record in order.
func (c *RecordCache) SetMany(records []domain.Record) {
	c.mu.Lock()
	for _, r := range records {
		c.records[r.RecordID()] = r
	}
	c.mu.Unlock()
}

// Get returns the stored record for id, if any.
func (c *RecordCache) Get(id string) (domain.Record, bool) {
	c.mu.RLock()
	r, ok := c.records[id]
	c.mu.RUnlock()
	return r, ok
}

// Len reports the number of cached records.
func (c *RecordCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// FetchOnce returns the cached record for id, or runs fetch to produce it.
// Concurrent callers for the same uncached id share one fetch call. The
// fetch function is responsible for caching the record it returns (and any
// related records it warms as a side effect).
func (c *RecordCache) FetchOnce(id string, fetch func() (domain.Record, error)) (domain.Record, error) {
	if r, ok := c.Get(id); ok {
		return r, nil
	}
	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		if r, ok := c.Get(id); ok {
			return r, nil
		}
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.Record), nil
}
