// Package dasha computes the Vimshottari Dasha timeline: nine major periods
// (maha dasha) covering one 120-year cycle, each divided into nine
// sub-periods (antar dasha).
//
// The starting lord is the ruler of the nakshatra occupied by the natal
// Moon, and the portion of its period already elapsed at birth equals the
// Moon's progress through that nakshatra.
//
// Durations use 365.25-day years and are computed in whole milliseconds, so
// antar periods tile each maha period exactly and the nine maha periods span
// exactly 120 years.
package dasha

import (
	"math"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
)

// Lord is one entry of the Vimshottari sequence.
type Lord struct {
	Body  graha.Body
	Years int
}

// Sequence is the fixed Vimshottari order. Nakshatra rulers repeat this
// order every nine mansions starting at Ashwini, so index arithmetic
// (mod 9) depends on it.
var Sequence = [9]Lord{
	{graha.Ketu, 7},
	{graha.Venus, 20},
	{graha.Sun, 6},
	{graha.Moon, 10},
	{graha.Mars, 7},
	{graha.Rahu, 18},
	{graha.Jupiter, 16},
	{graha.Saturn, 19},
	{graha.Mercury, 17},
}

// TotalYears is the length of one full cycle.
const TotalYears = 120

// yearMs is one 365.25-day year in milliseconds.
const yearMs int64 = 31_557_600_000

// NakshatraRuler returns the sequence index and lord ruling nakshatra n.
func NakshatraRuler(n sidereal.Nakshatra) (int, Lord) {
	i := ((int(n) % 9) + 9) % 9
	return i, Sequence[i]
}

// Period is a span of time ruled by one body.
type Period struct {
	Lord  graha.Body `json:"lord"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
}

// Contains reports whether t lies in [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Duration returns End - Start.
func (p Period) Duration() time.Duration { return p.End.Sub(p.Start) }

// Antar is a sub-period within a maha dasha.
type Antar = Period

// Maha is a major period and its nine sub-periods.
type Maha struct {
	Period
	Years  int     `json:"years"`
	Antars []Antar `json:"antars"`
}

// Timeline is a full 120-year Vimshottari cycle.
type Timeline struct {
	Birth     time.Time          `json:"birth"`
	Moon      float64            `json:"moon_longitude"`
	Nakshatra sidereal.Nakshatra `json:"nakshatra"`
	Elapsed   float64            `json:"elapsed_fraction"` // progress through the birth nakshatra
	Mahas     []Maha             `json:"mahas"`
}

// Start returns the (back-dated) start of the first maha period.
func (tl Timeline) Start() time.Time {
	if len(tl.Mahas) == 0 {
		return time.Time{}
	}
	return tl.Mahas[0].Start
}

// End returns the end of the last maha period.
func (tl Timeline) End() time.Time {
	if len(tl.Mahas) == 0 {
		return time.Time{}
	}
	return tl.Mahas[len(tl.Mahas)-1].End
}

// span is one step of the period fold: who rules and for how long.
type span struct {
	lord graha.Body
	ms   int64
}

// tile lays spans end to end from start. Each period starts where the
// previous one ended.
func tile(start time.Time, spans []span) []Period {
	out := make([]Period, len(spans))
	for i, s := range spans {
		if i > 0 {
			start = out[i-1].End
		}
		out[i] = Period{Lord: s.lord, Start: start, End: start.Add(time.Duration(s.ms) * time.Millisecond)}
	}
	return out
}

// cycle returns the nine sequence entries starting at index from, with
// durations given by unit.
func cycle(from int, unit func(Lord) int64) []span {
	out := make([]span, 9)
	for i := range out {
		l := Sequence[(from+i)%9]
		out[i] = span{lord: l.Body, ms: unit(l)}
	}
	return out
}

// Calculate builds the Vimshottari timeline for a Moon at sidereal
// longitude moon (any finite value, normalised here) at instant birth.
func Calculate(moon float64, birth time.Time) Timeline {
	nak, frac := sidereal.NakshatraFraction(moon)
	startIdx, first := NakshatraRuler(nak)

	elapsed := int64(math.Round(frac * float64(first.Years) * float64(yearMs)))
	start := birth.Add(-time.Duration(elapsed) * time.Millisecond)

	mahaSpans := cycle(startIdx, func(l Lord) int64 { return int64(l.Years) * yearMs })
	periods := tile(start, mahaSpans)

	mahas := make([]Maha, len(periods))
	for i, p := range periods {
		mahaYears := int64(Sequence[(startIdx+i)%9].Years)
		antars := tile(p.Start, cycle((startIdx+i)%9, func(l Lord) int64 {
			return mahaYears * int64(l.Years) * yearMs / TotalYears
		}))
		mahas[i] = Maha{Period: p, Years: int(mahaYears), Antars: antars}
	}

	return Timeline{
		Birth:     birth,
		Moon:      sidereal.Normalize(moon),
		Nakshatra: nak,
		Elapsed:   frac,
		Mahas:     mahas,
	}
}

// Current identifies the active periods at an instant.
type Current struct {
	Maha       Period `json:"maha"`
	Years      int    `json:"years"`
	Antar      Antar  `json:"antar"`
	MahaIndex  int    `json:"maha_index"`
	AntarIndex int    `json:"antar_index"`
}

// CurrentAt returns the maha and antar periods containing t. If t falls in a
// maha period but past its last antar, the last antar is returned. The
// boolean is false only when t lies outside the timeline.
func (tl Timeline) CurrentAt(t time.Time) (Current, bool) {
	for mi, m := range tl.Mahas {
		if !m.Contains(t) {
			continue
		}
		cur := Current{Maha: m.Period, Years: m.Years, MahaIndex: mi}
		for ai, a := range m.Antars {
			if a.Contains(t) {
				cur.Antar, cur.AntarIndex = a, ai
				return cur, true
			}
		}
		last := len(m.Antars) - 1
		if last < 0 {
			return Current{}, false
		}
		cur.Antar, cur.AntarIndex = m.Antars[last], last
		return cur, true
	}
	return Current{}, false
}
