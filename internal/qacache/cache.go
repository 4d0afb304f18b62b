package qacache

import (
	"sync"
	"time"
)

type entry struct {
	key string
	ts  time.Time
}

type answer struct {
	text string
	ts   time.Time
}

// Cache keeps a fixed-size set of recently produced answers keyed by the
// normalized question, so a repeat question inside the ttl window skips the
// whole pipeline.
type Cache struct {
	mu       sync.Mutex
	items    map[string]answer
	order    []entry
	capacity int
	ttl      time.Duration
}

// New creates a cache with the provided capacity and ttl.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]answer, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Get returns the cached answer for key when it is still inside the ttl
// window.
func (c *Cache) Get(key string) (string, bool) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.items[key]; ok {
		if now.Sub(a.ts) <= c.ttl {
			return a.text, true
		}
	}
	return "", false
}

// Put records an answer for key, evicting expired and over-capacity entries.
func (c *Cache) Put(key, text string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = answer{text: text, ts: now}
	c.order = append(c.order, entry{key: key, ts: now})
	c.compact(now)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		if a, ok := c.items[oldest.key]; ok {
			if a.ts == oldest.ts {
				delete(c.items, oldest.key)
			}
		}
	}
}
