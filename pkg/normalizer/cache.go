// pkg/normalizer/cache.go
package normalizer

import (
	"sync"

	"go.uber.org/zap"

	"github.com/transito-gt/tablero/pkg/model"
)

type cacheKey struct {
	table   string
	version string
}

// Cache memoizes normalization keyed by (table name, rule-set version).
// Source tables are static within a deployment, so entries are invalidated
// only by explicit calls, never by a timer. Cached results are shared
// read-only across sessions.
type Cache struct {
	n       *Normalizer
	logger  *zap.Logger
	mu      sync.RWMutex
	entries map[cacheKey]*Result
}

// NewCache wraps a Normalizer with memoization.
func NewCache(n *Normalizer, logger *zap.Logger) *Cache {
	return &Cache{
		n:       n,
		logger:  logger,
		entries: make(map[cacheKey]*Result),
	}
}

// Normalize returns the cached result for (table.Name, rules.Version) or
// normalizes and stores it. Errors are not cached; a failed table is retried
// on the next call.
func (c *Cache) Normalize(table *model.RawTable, rules *model.RuleSet) (*Result, error) {
	key := cacheKey{table: table.Name, version: rules.Version}

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	result, err := c.n.Normalize(table, rules)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = result
	c.mu.Unlock()
	return result, nil
}

// Invalidate removes one memoized entry.
func (c *Cache) Invalidate(table, version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey{table: table, version: version})
}

// Clear removes every memoized entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger != nil {
		c.logger.Debug("Clearing normalizer cache", zap.Int("entries", len(c.entries)))
	}
	c.entries = make(map[cacheKey]*Result)
}

// Len returns the number of memoized results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
