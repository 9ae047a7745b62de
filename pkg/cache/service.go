package cache

import "time"

// CacheService defines the behavior for caching mechanisms
type CacheService interface {
	// Get retrieves a value from the cache
	// Returns value, true if found
	// Returns nil, false if not found
	Get(key string) (interface{}, bool)

	// Set adds a value to the cache with a duration
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a value from the cache, firing the eviction hook if it was present
	Delete(key string)

	// Items returns a snapshot of all unexpired values keyed by cache key
	Items() map[string]interface{}

	// OnEvicted registers the hook called when a value is deleted or expires.
	// Flush does not call it.
	OnEvicted(fn func(key string, value interface{}))

	// Flush removes all items
	Flush()
}
