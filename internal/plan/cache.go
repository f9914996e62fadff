package plan

import (
	"github.com/puzpuzpuz/xsync/v3"

	"object-mapper/node"
)

// Cache memoizes procedures by key. A failed build is cached like a
// successful one, every later mapping of the key reports the same error.
// Concurrent requests for a key build it once.
type Cache struct {
	entries *xsync.MapOf[Key, *cacheEntry]
}

type cacheEntry struct {
	proc *node.Procedure
	err  error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: xsync.NewMapOf[Key, *cacheEntry]()}
}

// GetOrBuild returns the procedure of the key, building it on first use.
// build must not call back into the cache.
func (c *Cache) GetOrBuild(key Key, build func(Key) (*node.Procedure, error)) (*node.Procedure, error) {
	entry, _ := c.entries.LoadOrCompute(key, func() *cacheEntry {
		proc, err := build(key)
		return &cacheEntry{proc: proc, err: err}
	})

	return entry.proc, entry.err
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	return c.entries.Size()
}

// Reset drops every cached procedure and returns how many there were.
func (c *Cache) Reset() int {
	n := c.entries.Size()
	c.entries.Clear()

	return n
}
