// Package timing finds when transiting bodies enter and leave signs and
// when they perfect conjunctions with natal points.
//
// An [Engine] scans outward from a reference instant in coarse steps until
// the body's sign changes, then bisects the bracket to about a day. Bodies
// that retrograde (Mercury through Saturn) get a verification pass: a brief
// retrograde dip out of the sign is absorbed into the surrounding stay, and
// an exit followed by a retrograde return is pushed out to the final
// departure.
//
// Searches never fail. When no crossing is found within a body's horizon
// the stay is assumed to extend exactly to the horizon.
//
// Each Engine owns its position and timing caches. Create one engine per
// natal chart session and call [Engine.Clear] when the chart changes.
package timing

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jyotish/pkg/core/ephemeris"
	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
	"github.com/matzehuels/jyotish/pkg/errors"
	"github.com/matzehuels/jyotish/pkg/observability"
)

const (
	day   = 24 * time.Hour
	dayMs = 86_400_000

	// maxExitExtensions bounds how many retrograde returns may push one
	// exit further out.
	maxExitExtensions = 8
)

// Direction selects the scan direction of a boundary search.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Engine resolves sign stays and conjunction timing against a provider.
// It is safe for concurrent use; calls are serialized.
type Engine struct {
	provider ephemeris.Provider
	configs  SearchConfigs
	logger   *log.Logger
	hooks    observability.TimingHooks

	mu        sync.Mutex
	positions *PositionCache
	stays     *TimingCache
}

// Option configures an Engine.
type Option func(*Engine)

// WithSearchConfigs replaces the search table.
func WithSearchConfigs(cs SearchConfigs) Option {
	return func(e *Engine) { e.configs = cs }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHooks overrides the globally registered timing hooks.
func WithHooks(h observability.TimingHooks) Option {
	return func(e *Engine) {
		if h != nil {
			e.hooks = h
		}
	}
}

// WithPositionCacheSize sets the position cache capacity.
func WithPositionCacheSize(n int) Option {
	return func(e *Engine) { e.positions = NewPositionCache(n) }
}

// NewEngine creates an engine. The search table is validated up front so a
// malformed table fails here rather than mid-search.
func NewEngine(p ephemeris.Provider, opts ...Option) (*Engine, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "timing engine requires an ephemeris provider")
	}
	e := &Engine{
		provider:  p,
		configs:   DefaultSearchConfigs(),
		logger:    log.Default(),
		hooks:     observability.Timing(),
		positions: NewPositionCache(DefaultPositionCacheSize),
		stays:     NewTimingCache(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.configs.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Config returns the search parameters for body.
func (e *Engine) Config(body graha.Body) (SearchConfig, bool) {
	c, ok := e.configs[body]
	return c, ok
}

// Clear drops both caches. Call it whenever the natal chart changes.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.positions.Clear()
	e.stays.Clear()
}

// CacheStats reports the number of cached position sets and sign stays.
func (e *Engine) CacheStats() (positions, stays int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positions.Len(), e.stays.Len()
}

// positionsAt returns the positions for the 12-hour slot containing t.
// Positions are computed at the slot instant itself, so results do not
// depend on which instant first populated the slot.
func (e *Engine) positionsAt(t time.Time) ([]sidereal.Position, bool) {
	key := PositionKey(t)
	if ps, ok := e.positions.Get(key); ok {
		e.hooks.OnPositionLookup(true)
		return ps, true
	}
	e.hooks.OnPositionLookup(false)

	ps, err := ephemeris.Positions(e.provider, time.UnixMilli(key).UTC())
	if err != nil {
		e.logger.Debug("position lookup failed", "at", time.UnixMilli(key).UTC(), "err", err)
		return nil, false
	}
	if e.positions.Put(key, ps) {
		e.hooks.OnPositionEvict()
	}
	return ps, true
}

// signAt returns the sign of body at t, or -1 when unavailable.
func (e *Engine) signAt(body graha.Body, t time.Time) sidereal.Sign {
	ps, ok := e.positionsAt(t)
	if !ok {
		return -1
	}
	p, ok := sidereal.Find(ps, body)
	if !ok {
		return -1
	}
	return p.Sign
}

// longitudeAt returns the sidereal longitude of body at t.
func (e *Engine) longitudeAt(body graha.Body, t time.Time) (float64, bool) {
	ps, ok := e.positionsAt(t)
	if !ok {
		return 0, false
	}
	p, ok := sidereal.Find(ps, body)
	return p.Longitude, ok
}

func addDays(t time.Time, days int) time.Time {
	return t.Add(time.Duration(days) * day)
}

// daysBetween returns b - a in whole days, rounded half away from zero.
func daysBetween(a, b time.Time) int {
	return int(math.Round(float64(b.UnixMilli()-a.UnixMilli()) / dayMs))
}

func midpoint(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}
