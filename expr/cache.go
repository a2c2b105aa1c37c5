package expr

import "sync"

// Cache is a concurrency-safe parse-through cache keyed by the expression
// string. Expressions are typically evaluated against many entities across
// many resolutions, so parsing each distinct expression once is worthwhile.
type Cache struct {
	mu         sync.RWMutex
	predicates map[string]Predicate
}

// NewCache creates an empty expression cache.
func NewCache() *Cache {
	return &Cache{
		predicates: map[string]Predicate{},
	}
}

// Parse returns the cached Predicate for the expression, parsing and caching
// it on first use. Parse failures are not cached; re-parsing a bad expression
// is cheap and keeps the cache free of error state.
func (c *Cache) Parse(expression string) (Predicate, error) {
	c.mu.RLock()
	predicate, ok := c.predicates[expression]
	c.mu.RUnlock()
	if ok {
		return predicate, nil
	}

	predicate, err := Parse(expression)
	if err != nil {
		return nil, err
	}

	if predicate != nil {
		c.mu.Lock()
		c.predicates[expression] = predicate
		c.mu.Unlock()
	}

	return predicate, nil
}

// Len returns the number of cached predicates.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.predicates)
}
