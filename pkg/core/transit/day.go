package transit

import (
	"github.com/matzehuels/jyotish/pkg/core/chart"
	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
)

// DayRating is the calendar color of a day.
type DayRating string

const (
	Good        DayRating = "good"
	Mixed       DayRating = "mixed"
	Challenging DayRating = "challenging"
)

// Score thresholds for [Rate].
const (
	goodScore        = 3.0
	challengingScore = -3.0
)

// DayScore sums the weighted effect of all transits against natal.
//
// Slow movers count double for house placement. Every natal body within
// orb adds 1 for a benefic transit and subtracts 0.5 for a malefic one;
// every natal body in an aspected house adds 0.5 or subtracts 0.25. The
// Sun never subtracts. Unlike [Analyze], aspects are counted even on
// bodies already in conjunction.
func DayScore(natal *chart.Natal, positions []sidereal.Position) float64 {
	score := 0.0
	for _, p := range positions {
		house := natal.Ascendant.House(p.Sign)
		benefic := p.Body.IsBenefic()
		mild := p.Body.Nature() == graha.Mild

		weight := 1.0
		if p.Body.IsSlow() {
			weight = 2
		}
		switch Assess(p.Body, house) {
		case Positive:
			score += weight
		case Negative:
			if !mild {
				score -= weight
			}
		}

		for _, n := range natal.Planets {
			if sidereal.AngularDistance(p.Longitude, n.Longitude) > ConjunctionOrb {
				continue
			}
			if benefic {
				score++
			} else if !mild {
				score -= 0.5
			}
		}

		for _, dist := range p.Body.Aspects() {
			target := AspectedHouse(house, dist)
			for _, n := range natal.Planets {
				if natal.Ascendant.House(n.Sign) != target {
					continue
				}
				if benefic {
					score += 0.5
				} else if !mild {
					score -= 0.25
				}
			}
		}
	}
	return score
}

// Rate maps a day score onto a rating.
func Rate(score float64) DayRating {
	switch {
	case score >= goodScore:
		return Good
	case score <= challengingScore:
		return Challenging
	}
	return Mixed
}

// DayQuality rates the transits in positions against natal.
func DayQuality(natal *chart.Natal, positions []sidereal.Position) DayRating {
	return Rate(DayScore(natal, positions))
}
