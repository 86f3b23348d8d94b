// Package cache provides a bounded LRU cache for loaded configurations,
// keyed by config directory. Sessions hold one of these so that repeated
// evaluations within a session do not re-read unchanged configs, while
// separate sessions stay fully independent.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/rufio-dev/rufio/internal/domain"
)

// Stats describes cache effectiveness.
type Stats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	Size     int     `json:"size"`
	MaxSize  int     `json:"max_size"`
	HitRatio float64 `json:"hit_ratio"`
}

// node represents a node in the doubly-linked list.
type node struct {
	key   string
	value *domain.LoadedConfig
	prev  *node
	next  *node
}

// LRUCache maps config directories to loaded configurations with LRU
// eviction.
type LRUCache struct {
	maxSize int
	size    int

	// Doubly-linked list for LRU ordering
	head *node
	tail *node

	// HashMap for O(1) lookups
	cache map[string]*node

	mutex sync.RWMutex

	// Atomic counters for metrics
	hits   int64
	misses int64
}

// DefaultMaxSize bounds the directory cache when no size is configured.
const DefaultMaxSize = 256

// NewLRUCache creates a new LRU cache with the specified maximum size.
func NewLRUCache(maxSize int) *LRUCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	// Dummy head and tail nodes for easier list manipulation
	head := &node{}
	tail := &node{}
	head.next = tail
	tail.prev = head

	return &LRUCache{
		maxSize: maxSize,
		head:    head,
		tail:    tail,
		cache:   make(map[string]*node),
	}
}

// Get retrieves the config cached for a directory and marks it as recently
// used.
func (c *LRUCache) Get(dir string) (*domain.LoadedConfig, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	foundNode, exists := c.cache[dir]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	c.moveToFront(foundNode)
	atomic.AddInt64(&c.hits, 1)
	return foundNode.value, true
}

// Set caches the config loaded for a directory.
func (c *LRUCache) Set(dir string, cfg *domain.LoadedConfig) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if existing, ok := c.cache[dir]; ok {
		existing.value = cfg
		c.moveToFront(existing)
		return
	}

	newNode := &node{key: dir, value: cfg}
	c.addToFront(newNode)
	c.cache[dir] = newNode
	c.size++

	if c.size > c.maxSize {
		c.evictLRU()
	}
}

// Invalidate removes a specific directory from the cache.
func (c *LRUCache) Invalidate(dir string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, exists := c.cache[dir]; exists {
		c.removeNode(n)
		delete(c.cache, dir)
		c.size--
	}
}

// Clear removes all entries from the cache.
func (c *LRUCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.head.next = c.tail
	c.tail.prev = c.head
	c.cache = make(map[string]*node)
	c.size = 0

	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// Stats returns current cache statistics.
func (c *LRUCache) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	total := hits + misses

	var hitRatio float64
	if total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return Stats{
		Hits:     hits,
		Misses:   misses,
		Size:     c.size,
		MaxSize:  c.maxSize,
		HitRatio: hitRatio,
	}
}

// moveToFront moves a node to the front of the list (most recently used).
func (c *LRUCache) moveToFront(n *node) {
	c.removeNode(n)
	c.addToFront(n)
}

func (c *LRUCache) addToFront(n *node) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *LRUCache) removeNode(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

// evictLRU removes the least recently used entry.
func (c *LRUCache) evictLRU() {
	if c.tail.prev == c.head {
		return
	}

	lru := c.tail.prev
	c.removeNode(lru)
	delete(c.cache, lru.key)
	c.size--
}
