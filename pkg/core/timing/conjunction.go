package timing

import (
	"time"

	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
)

const (
	defaultConjunctionStep    = 3
	defaultConjunctionHorizon = 90
	conjunctionBisections     = 15
)

// Conjunction describes a transit's relation to a natal longitude.
// Exact is nil when the provider has no longitude for the body at the
// reference instant.
type Conjunction struct {
	IsApplying bool       `json:"is_applying"`
	Exact      *time.Time `json:"exact,omitempty"`
}

// Conjunction reports whether body is closing on natalLon at ref and
// estimates the instant of minimum separation. Applying contacts are
// searched forward, separating ones backward. If the separation is still
// closing at the body's horizon, the closest sampled instant is returned.
func (e *Engine) Conjunction(body graha.Body, natalLon float64, ref time.Time) Conjunction {
	e.mu.Lock()
	defer e.mu.Unlock()

	orb := func(t time.Time) float64 {
		lon, ok := e.longitudeAt(body, t)
		if !ok {
			return 180
		}
		return sidereal.AngularDistance(lon, natalLon)
	}

	if _, ok := e.longitudeAt(body, ref); !ok {
		return Conjunction{}
	}
	current := orb(ref)
	applying := orb(addDays(ref, -1)) > current
	dir := Backward
	if applying {
		dir = Forward
	}

	step, horizon := defaultConjunctionStep, defaultConjunctionHorizon
	if cfg, ok := e.configs[body]; ok {
		step, horizon = cfg.StepDays, cfg.MaxDays
	}
	step = max(1, step/2)

	best, bestAt := current, ref
	for d := step; d <= horizon; d += step {
		check := addDays(ref, int(dir)*d)
		o := orb(check)
		if o < best {
			best, bestAt = o, check
			continue
		}

		lo, hi := addDays(check, -step), check
		if dir == Backward {
			lo, hi = check, addDays(check, step)
		}
		for i := 0; i < conjunctionBisections && daysBetween(lo, hi) > 1; i++ {
			mid := midpoint(lo, hi)
			if orb(lo) < orb(mid) {
				hi = mid
			} else {
				lo = mid
			}
		}
		exact := midpoint(lo, hi)
		return Conjunction{IsApplying: applying, Exact: &exact}
	}

	// Every sample up to the horizon was closer than the last.
	return Conjunction{IsApplying: applying, Exact: &bestAt}
}
