package facts

import (
	"strings"
	"sync"

	"github.com/toyz/mockable/internal/models"
	"github.com/toyz/mockable/internal/utils"
)

// Key addresses one cache entry
type Key struct {
	Identity   string
	Scope      string // the package or module the entry was computed for
	Generation uint64
}

// Cache holds per-pass results. Entries are keyed by the generation that
// produced them; BeginPass advances the generation and drops every older
// entry, so nothing computed in one pass is visible to the next.
type Cache[V any] struct {
	mu         sync.Mutex
	generation uint64
	entries    *utils.Cache[Key, V]
}

// NewCache creates a cache at generation zero. Call BeginPass before use.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{entries: utils.NewCache[Key, V]()}
}

// BeginPass starts a new generation and returns it with the number of evicted entries
func (c *Cache[V]) BeginPass() (uint64, int) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	evicted := c.entries.DeleteFunc(func(k Key) bool { return k.Generation < gen })
	return gen, evicted
}

// Generation returns the current generation
func (c *Cache[V]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Cache[V]) key(identity, scope string) Key {
	return Key{Identity: identity, Scope: scope, Generation: c.Generation()}
}

// Lookup returns the entry stored during the current generation
func (c *Cache[V]) Lookup(identity, scope string) (V, bool) {
	return c.entries.Get(c.key(identity, scope))
}

// Store records an entry for the current generation
func (c *Cache[V]) Store(identity, scope string, value V) {
	c.entries.Set(c.key(identity, scope), value)
}

// GetOrCompute returns the current generation's entry or computes and stores it.
// Errors are not cached.
func (c *Cache[V]) GetOrCompute(identity, scope string, compute func() (V, error)) (V, error) {
	return c.entries.GetOrCompute(c.key(identity, scope), compute)
}

// Stats returns hit and miss counters
func (c *Cache[V]) Stats() utils.CacheStats {
	return c.entries.GetStats()
}

// Entry is the cached outcome of resolving one marker target
type Entry struct {
	Target  models.GenerationTarget // completed with package name and type parameters
	Facts   []models.MethodFact
	Skipped []error
}

// TargetKey is the cache identity of a target. Two markers share an entry
// only when they select the same functions.
func TargetKey(t models.GenerationTarget) string {
	var b strings.Builder
	b.WriteString(t.Identity())
	if len(t.Include) > 0 {
		b.WriteString(" +")
		b.WriteString(strings.Join(t.Include, ","))
	}
	if len(t.Exclude) > 0 {
		b.WriteString(" -")
		b.WriteString(strings.Join(t.Exclude, ","))
	}
	return b.String()
}
