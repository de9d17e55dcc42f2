package timing

import (
	"time"

	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
	"github.com/matzehuels/jyotish/pkg/errors"
)

// SignStay is one continuous occupancy of a sign, with retrograde
// re-entries folded into the surrounding window.
type SignStay struct {
	Body  graha.Body    `json:"body"`
	Sign  sidereal.Sign `json:"sign"`
	Entry time.Time     `json:"entry"`
	Exit  time.Time     `json:"exit"`
}

// FindBoundaryCrossing scans from start in direction dir for the instant
// body leaves sign, then bisects the bracket to about one day.
//
// Backward searches return the earliest sampled instant still inside sign
// (the entry); forward searches return the first sampled instant outside it
// (the exit). The boolean is false when the body stays in sign for the
// whole horizon.
func (e *Engine) FindBoundaryCrossing(body graha.Body, sign sidereal.Sign, start time.Time, dir Direction, cfg SearchConfig) (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findBoundaryCrossing(body, sign, start, dir, cfg)
}

func (e *Engine) findBoundaryCrossing(body graha.Body, sign sidereal.Sign, start time.Time, dir Direction, cfg SearchConfig) (time.Time, bool) {
	prev := start
	for d := cfg.StepDays; d <= cfg.MaxDays; d += cfg.StepDays {
		curr := addDays(start, int(dir)*d)
		if e.signAt(body, curr) == sign {
			prev = curr
			continue
		}

		// prev is inside, curr outside.
		lo, hi := prev, curr
		if dir == Backward {
			lo, hi = curr, prev
		}
		for daysBetween(lo, hi) > 1 {
			mid := midpoint(lo, hi)
			inside := e.signAt(body, mid) == sign
			switch {
			case inside && dir == Forward, !inside && dir == Backward:
				lo = mid
			default:
				hi = mid
			}
		}
		return hi, true
	}

	e.hooks.OnSearchExhausted(body.Key(), dir.String())
	e.logger.Debug("boundary search exhausted", "body", body, "sign", sign, "direction", dir, "horizon_days", cfg.MaxDays)
	return time.Time{}, false
}

// FindContinuousSignStay resolves the stay of body in sign around ref.
// It returns an INVALID_BODY error only when body has no search config.
func (e *Engine) FindContinuousSignStay(body graha.Body, sign sidereal.Sign, ref time.Time) (SignStay, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findContinuousSignStay(body, sign, ref)
}

func (e *Engine) findContinuousSignStay(body graha.Body, sign sidereal.Sign, ref time.Time) (SignStay, error) {
	cfg, ok := e.configs[body]
	if !ok {
		return SignStay{}, errors.New(errors.ErrCodeInvalidBody, "no search config for %s", body.Key())
	}

	entry, found := e.findBoundaryCrossing(body, sign, ref, Backward, cfg)
	if !found {
		entry = addDays(ref, -cfg.MaxDays)
	}
	if cfg.GraceDays > 0 {
		entry = e.verifyEntry(body, sign, entry, ref, cfg)
	}

	exit, found := e.findBoundaryCrossing(body, sign, ref, Forward, cfg)
	if !found {
		exit = addDays(ref, cfg.MaxDays)
	} else if cfg.GraceDays > 0 {
		exit = e.verifyExit(body, sign, exit, cfg)
	}

	return SignStay{Body: body, Sign: sign, Entry: entry, Exit: exit}, nil
}

// verifyEntry walks from entry to ref at half-step resolution. When the
// body is found outside sign, the latest re-entry before ref becomes the
// new entry.
func (e *Engine) verifyEntry(body graha.Body, sign sidereal.Sign, entry, ref time.Time, cfg SearchConfig) time.Time {
	step := cfg.verifyStep()
	lastReentry := entry

	for check := addDays(entry, step); check.Before(ref); check = addDays(check, step) {
		if e.signAt(body, check) == sign {
			continue
		}

		reentry, found := e.findReentry(body, sign, check, ref, step, cfg.GraceDays)
		if !found {
			// The body was seen outside sign and no return turned up
			// before ref. Keep the last confirmed entry.
			e.hooks.OnVerificationAnomaly(body.Key())
			e.logger.Debug("re-entry not found during entry verification", "body", body, "sign", sign, "left_at", check, "ref", ref)
			break
		}
		lastReentry = reentry
		check = reentry
	}
	return lastReentry
}

// findReentry looks for the first return into sign after out, a sampled
// instant outside it, within grace days and strictly before ref.
func (e *Engine) findReentry(body graha.Body, sign sidereal.Sign, out, ref time.Time, step, grace int) (time.Time, bool) {
	lo := out
	for d := step; d <= grace; d += step {
		candidate := addDays(out, d)
		if !candidate.Before(ref) {
			break
		}
		if e.signAt(body, candidate) == sign {
			return e.bisectEntry(body, sign, addDays(candidate, -step), candidate), true
		}
		lo = candidate
	}

	// Nothing inside the grace window. If the body is back in sign by ref
	// the return happened between the last outside sample and ref.
	if e.signAt(body, ref) == sign {
		return e.bisectEntry(body, sign, lo, ref), true
	}
	return time.Time{}, false
}

// bisectEntry narrows [lo, hi], lo outside and hi inside sign, to one day
// and returns hi.
func (e *Engine) bisectEntry(body graha.Body, sign sidereal.Sign, lo, hi time.Time) time.Time {
	for daysBetween(lo, hi) > 1 {
		mid := midpoint(lo, hi)
		if e.signAt(body, mid) == sign {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

// verifyExit checks up to GraceDays past exit for a retrograde return into
// sign. Each return pushes exit to the next forward crossing and restarts
// the grace window from there.
func (e *Engine) verifyExit(body graha.Body, sign sidereal.Sign, exit time.Time, cfg SearchConfig) time.Time {
	step := cfg.verifyStep()
	for ext := 0; ext < maxExitExtensions; ext++ {
		graceEnd := addDays(exit, cfg.GraceDays)
		returned := time.Time{}
		for check := addDays(exit, step); check.Before(graceEnd); check = addDays(check, step) {
			if e.signAt(body, check) == sign {
				returned = check
				break
			}
		}
		if returned.IsZero() {
			return exit
		}

		later, found := e.findBoundaryCrossing(body, sign, returned, Forward, cfg)
		if !found {
			return addDays(returned, cfg.MaxDays)
		}
		e.logger.Debug("exit pushed out by retrograde return", "body", body, "sign", sign, "from", exit, "to", later)
		exit = later
	}
	return exit
}

// Summary is the timing of a body's current sign stay relative to a
// reference instant.
type Summary struct {
	Body          graha.Body    `json:"body"`
	Sign          sidereal.Sign `json:"sign"`
	Entry         time.Time     `json:"entry"`
	Exit          time.Time     `json:"exit"`
	ProgressPct   float64       `json:"progress_pct"`
	TotalDays     int           `json:"total_days"`
	ElapsedDays   int           `json:"elapsed_days"`
	DaysRemaining int           `json:"days_remaining"`
	Cached        bool          `json:"cached"`
}

func summarize(body graha.Body, sign sidereal.Sign, entry, exit, ref time.Time) Summary {
	total := daysBetween(entry, exit)
	elapsed := daysBetween(entry, ref)
	remaining := max(0, daysBetween(ref, exit))

	pct := 0.0
	if total > 0 {
		pct = float64(elapsed) / float64(total) * 100
	}
	pct = min(max(pct, 0), 100)

	return Summary{
		Body:          body,
		Sign:          sign,
		Entry:         entry,
		Exit:          exit,
		ProgressPct:   pct,
		TotalDays:     total,
		ElapsedDays:   elapsed,
		DaysRemaining: remaining,
	}
}

// Stay returns the timing summary for one body in sign at ref, reusing
// the timing cache when the body's sign is unchanged.
func (e *Engine) Stay(body graha.Body, sign sidereal.Sign, ref time.Time) (Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stay(body, sign, ref)
}

func (e *Engine) stay(body graha.Body, sign sidereal.Sign, ref time.Time) (Summary, error) {
	started := time.Now()
	if entry, exit, ok := e.stays.Lookup(body, sign); ok {
		e.hooks.OnStayResolved(body.Key(), true, time.Since(started))
		s := summarize(body, sign, entry, exit, ref)
		s.Cached = true
		return s, nil
	}

	st, err := e.findContinuousSignStay(body, sign, ref)
	if err != nil {
		return Summary{}, err
	}
	e.stays.Store(body, sign, st.Entry, st.Exit)
	e.hooks.OnStayResolved(body.Key(), false, time.Since(started))
	return summarize(body, sign, st.Entry, st.Exit, ref), nil
}

// Timings resolves the stay of every transiting body except the Moon,
// whose sign changes too often for stay timing to be useful.
func (e *Engine) Timings(positions []sidereal.Position, ref time.Time) map[graha.Body]Summary {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[graha.Body]Summary, len(positions))
	for _, p := range positions {
		if p.Body == graha.Moon {
			continue
		}
		s, err := e.stay(p.Body, p.Sign, ref)
		if err != nil {
			e.logger.Debug("skipping timing", "body", p.Body, "err", err)
			continue
		}
		out[p.Body] = s
	}
	return out
}
