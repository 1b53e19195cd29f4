// Package market collects portfolio quotes with caching and retries
package market

import (
	"sync"
	"time"

	"github.com/avolkov/moex-reporter/internal/models"
)

// DefaultCacheTTL is the time window during which a fetched quote is
// reused without a network call.
const DefaultCacheTTL = 300 * time.Second

type cacheEntry struct {
	quote  *models.Quote
	expiry time.Time
}

// Cache is an explicit TTL quote cache, owned by the caller and passed
// into the service. One-shot runs construct it fresh per process; the
// scheduled service keeps it alive across runs, so the TTL actually
// takes effect there.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache creates a cache with the given TTL. A non-positive TTL falls
// back to DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached quote for a symbol, unchanged, when it is still
// within the TTL.
func (c *Cache) Get(symbol string) (*models.Quote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[symbol]
	if !ok || c.now().After(entry.expiry) {
		return nil, false
	}
	return entry.quote, true
}

// Put stores a quote, starting a fresh TTL window.
func (c *Cache) Put(quote *models.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[quote.Symbol] = cacheEntry{
		quote:  quote,
		expiry: c.now().Add(c.ttl),
	}
}

// Len returns the number of cached entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
