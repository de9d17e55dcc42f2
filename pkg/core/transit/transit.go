// Package transit analyzes current planetary positions against a natal
// chart: house placement, quality, conjunctions and Vedic aspects, plus a
// coarse day score for calendars.
package transit

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/chart"
	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
	"github.com/matzehuels/jyotish/pkg/core/timing"
)

// ConjunctionOrb is the widest separation, in degrees, counted as a
// conjunction with a natal body.
const ConjunctionOrb = 8.0

// Quality is the broad effect of a transit through a house.
type Quality string

const (
	Positive Quality = "positive"
	Negative Quality = "negative"
	Neutral  Quality = "neutral"
)

// Conjunction is a transiting body within [ConjunctionOrb] of a natal body.
type Conjunction struct {
	Natal  graha.Body          `json:"natal"`
	Orb    float64             `json:"orb"` // degrees, one decimal
	Timing *timing.Conjunction `json:"timing,omitempty"`
}

// Aspect is a Vedic aspect (drishti) from a transiting body onto a natal
// body in the aspected house.
type Aspect struct {
	Natal       graha.Body `json:"natal"`
	Distance    int        `json:"distance"`
	Type        string     `json:"type"` // "7th", "3rd", ...
	TargetHouse int        `json:"target_house"`
}

// Transit is the analysis of one transiting body.
type Transit struct {
	sidereal.Position
	House        int             `json:"house"`
	Quality      Quality         `json:"quality"`
	Conjunctions []Conjunction   `json:"conjunctions"`
	Aspects      []Aspect        `json:"aspects"`
	Description  string          `json:"description"`
	Timing       *timing.Summary `json:"timing,omitempty"`
}

// Analyze evaluates every transiting position against natal. The result is
// ordered slowest body first.
func Analyze(natal *chart.Natal, positions []sidereal.Position) []Transit {
	out := make([]Transit, 0, len(positions))
	for _, p := range positions {
		tr := Transit{
			Position:     p,
			House:        natal.Ascendant.House(p.Sign),
			Conjunctions: []Conjunction{},
			Aspects:      []Aspect{},
		}
		tr.Quality = Assess(p.Body, tr.House)

		for _, n := range natal.Planets {
			if d := sidereal.AngularDistance(p.Longitude, n.Longitude); d <= ConjunctionOrb {
				tr.Conjunctions = append(tr.Conjunctions, Conjunction{
					Natal: n.Body,
					Orb:   math.Round(d*10) / 10,
				})
			}
		}

		for _, dist := range p.Body.Aspects() {
			target := AspectedHouse(tr.House, dist)
			for _, n := range natal.Planets {
				if natal.Ascendant.House(n.Sign) != target || tr.conjunct(n.Body) {
					continue
				}
				tr.Aspects = append(tr.Aspects, Aspect{
					Natal:       n.Body,
					Distance:    dist,
					Type:        ordinal(dist),
					TargetHouse: target,
				})
			}
		}

		tr.Description = describe(tr)
		out = append(out, tr)
	}

	slices.SortStableFunc(out, func(a, b Transit) int {
		return slowRank(a.Body) - slowRank(b.Body)
	})
	return out
}

// WithTiming runs [Analyze] and attaches sign-stay timing (every body but
// the Moon) and conjunction timing from engine.
func WithTiming(natal *chart.Natal, positions []sidereal.Position, ref time.Time, engine *timing.Engine) []Transit {
	transits := Analyze(natal, positions)
	stays := engine.Timings(positions, ref)

	for i := range transits {
		tr := &transits[i]
		if tr.Body != graha.Moon {
			if s, ok := stays[tr.Body]; ok {
				tr.Timing = &s
			}
		}
		for j := range tr.Conjunctions {
			c := &tr.Conjunctions[j]
			n, ok := natal.Planet(c.Natal)
			if !ok {
				continue
			}
			ct := engine.Conjunction(tr.Body, n.Longitude, ref)
			c.Timing = &ct
		}
	}
	return transits
}

// Assess classifies a body transiting a house. Malefics do well in the
// upachaya houses 3, 6 and 11; benefics in 1, 5, 9 and 11. Malefics in the
// dusthanas 6, 8 and 12 are negative. Everything else is neutral.
func Assess(body graha.Body, house int) Quality {
	switch {
	case body.IsMalefic() && (house == 3 || house == 6 || house == 11):
		return Positive
	case body.IsBenefic() && (house == 1 || house == 5 || house == 9 || house == 11):
		return Positive
	case body.IsMalefic() && (house == 6 || house == 8 || house == 12):
		return Negative
	}
	return Neutral
}

// AspectedHouse returns the house a body in house aspects at distance.
// Distances count inclusively, so the 7th aspect from house 1 falls on
// house 7 and the 4th from house 10 on house 1.
func AspectedHouse(house, distance int) int {
	return (house+distance-2)%12 + 1
}

func (tr Transit) conjunct(body graha.Body) bool {
	for _, c := range tr.Conjunctions {
		if c.Natal == body {
			return true
		}
	}
	return false
}

func slowRank(b graha.Body) int {
	if i := slices.Index(graha.SlowFirst[:], b); i >= 0 {
		return i
	}
	return len(graha.SlowFirst)
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func describe(tr Transit) string {
	parts := []string{"Transiting " + tr.Sign.String()}

	if len(tr.Conjunctions) > 0 {
		names := make([]string, len(tr.Conjunctions))
		for i, c := range tr.Conjunctions {
			names[i] = "natal " + c.Natal.Name()
		}
		parts = append(parts, "Conjunct "+strings.Join(names, ", "))
	}

	if len(tr.Aspects) > 0 {
		asp := make([]string, len(tr.Aspects))
		for i, a := range tr.Aspects {
			asp[i] = a.Type + " asp natal " + a.Natal.Name()
		}
		parts = append(parts, strings.Join(asp, ", "))
	}

	return strings.Join(parts, " • ")
}
