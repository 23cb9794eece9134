package store

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
)

// Cache is a bounded read cache of projects keyed by id. Entries expire after ttl and are
// dropped on every local write. A nil *Cache is a disabled cache.
//
// Reads racing a write may fetch the old document before the write lands; the epoch
// counter keeps such a read from repopulating the cache after the invalidation.
type Cache struct {
	mu    sync.Mutex
	lru   *expirable.LRU[string, domain.Project]
	epoch uint64
}

// NewCache returns nil when size is not positive. ttl <= 0 disables expiry.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		return nil
	}
	return &Cache{lru: expirable.NewLRU[string, domain.Project](size, nil, ttl)}
}

func (c *Cache) Get(id string) (domain.Project, bool) {
	if c == nil {
		return domain.Project{}, false
	}
	p, ok := c.lru.Get(id)
	if !ok {
		return domain.Project{}, false
	}
	return p.Clone(), true
}

// Epoch must be read before fetching a document that will be passed to Put.
func (c *Cache) Epoch() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Put stores p unless an invalidation happened since epoch was read.
func (c *Cache) Put(p domain.Project, epoch uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	c.lru.Add(p.ID, p.Clone())
}

func (c *Cache) Invalidate(id string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.lru.Remove(id)
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
