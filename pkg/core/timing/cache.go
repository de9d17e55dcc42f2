package timing

import (
	"math"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
)

// DefaultPositionCacheSize bounds the position cache.
const DefaultPositionCacheSize = 500

const halfDayMs = 12 * 60 * 60 * 1000

// PositionKey rounds t to the nearest 12-hour boundary (UTC), in Unix
// milliseconds.
func PositionKey(t time.Time) int64 {
	return int64(math.Round(float64(t.UnixMilli())/halfDayMs)) * halfDayMs
}

// PositionCache memoizes position sets by 12-hour key. When full it evicts
// the oldest inserted key (FIFO). It is not safe for concurrent use; the
// owning [Engine] serializes access.
type PositionCache struct {
	entries map[int64][]sidereal.Position
	ring    []int64 // insertion order, circular
	head    int     // index of the oldest key
	size    int
}

// NewPositionCache creates a cache holding at most capacity position sets.
// Capacities below 1 are raised to 1.
func NewPositionCache(capacity int) *PositionCache {
	capacity = max(capacity, 1)
	return &PositionCache{
		entries: make(map[int64][]sidereal.Position, capacity),
		ring:    make([]int64, capacity),
	}
}

// Get returns the positions stored under key.
func (c *PositionCache) Get(key int64) ([]sidereal.Position, bool) {
	ps, ok := c.entries[key]
	return ps, ok
}

// Put stores positions under key and reports whether an older entry had to
// be evicted to make room. Re-putting an existing key replaces its value
// without changing its age.
func (c *PositionCache) Put(key int64, ps []sidereal.Position) (evicted bool) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = ps
		return false
	}
	if c.size == len(c.ring) {
		delete(c.entries, c.ring[c.head])
		c.ring[c.head] = key
		c.head = (c.head + 1) % len(c.ring)
		c.entries[key] = ps
		return true
	}
	c.ring[(c.head+c.size)%len(c.ring)] = key
	c.size++
	c.entries[key] = ps
	return false
}

// Len returns the number of cached position sets.
func (c *PositionCache) Len() int { return c.size }

// Cap returns the cache capacity.
func (c *PositionCache) Cap() int { return len(c.ring) }

// Clear drops every entry.
func (c *PositionCache) Clear() {
	clear(c.entries)
	c.head, c.size = 0, 0
}

// cachedStay is the last resolved window for one body.
type cachedStay struct {
	sign  sidereal.Sign
	entry time.Time
	exit  time.Time
}

// TimingCache remembers the most recent sign stay per body. A stay is
// reused as long as the body is still in the same sign.
type TimingCache struct {
	stays map[graha.Body]cachedStay
}

// NewTimingCache creates an empty timing cache.
func NewTimingCache() *TimingCache {
	return &TimingCache{stays: make(map[graha.Body]cachedStay)}
}

// Lookup returns the cached window for body if it was resolved for sign.
func (c *TimingCache) Lookup(body graha.Body, sign sidereal.Sign) (entry, exit time.Time, ok bool) {
	s, found := c.stays[body]
	if !found || s.sign != sign {
		return time.Time{}, time.Time{}, false
	}
	return s.entry, s.exit, true
}

// Store records the window for body.
func (c *TimingCache) Store(body graha.Body, sign sidereal.Sign, entry, exit time.Time) {
	c.stays[body] = cachedStay{sign: sign, entry: entry, exit: exit}
}

// Len returns the number of cached bodies.
func (c *TimingCache) Len() int { return len(c.stays) }

// Clear drops every entry.
func (c *TimingCache) Clear() { clear(c.stays) }
