package discovery

import (
	"strings"
	"sync"

	"github.com/spigell/talentsonar/internal/github"
)

// DefaultCacheSize is the capacity used when NewProfileCache receives a non-positive size.
const DefaultCacheSize = 256

// CacheStats reports the usage of a ProfileCache.
type CacheStats struct {
	Size      int
	Capacity  int
	Hits      int
	Misses    int
	Evictions int
}

// ProfileCache keeps analyzed GitHub users by login. When full, the entry
// inserted first is evicted.
type ProfileCache struct {
	mu       sync.RWMutex
	entries  map[string]*github.UserAnalysis
	order    []string
	capacity int
	stats    CacheStats
}

// NewProfileCache creates a cache holding at most size users.
func NewProfileCache(size int) *ProfileCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &ProfileCache{
		entries:  make(map[string]*github.UserAnalysis, size),
		capacity: size,
	}
}

// Get returns the cached analysis of login.
func (c *ProfileCache) Get(login string) (*github.UserAnalysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.entries[cacheKey(login)]
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return a, ok
}

// Put stores the analysis of login, replacing an existing entry in place.
func (c *ProfileCache) Put(login string, a *github.UserAnalysis) {
	key := cacheKey(login)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = a
		return
	}

	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.stats.Evictions++
	}

	c.entries[key] = a
	c.order = append(c.order, key)
}

// Clear removes all cache entries.
func (c *ProfileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*github.UserAnalysis, c.capacity)
	c.order = nil
}

// Stats returns a snapshot of the cache counters.
func (c *ProfileCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.stats
	s.Size = len(c.entries)
	s.Capacity = c.capacity
	return s
}

func cacheKey(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}
