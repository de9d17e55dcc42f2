// Package chart assembles a natal chart: the ascendant plus the sidereal
// positions of all nine bodies at the birth instant.
package chart

import (
	"time"

	"github.com/matzehuels/jyotish/pkg/core/ephemeris"
	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/houses"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
	"github.com/matzehuels/jyotish/pkg/errors"
)

// Natal is a birth chart.
type Natal struct {
	Birth     time.Time           `json:"birth"`
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
	Ascendant houses.Lagna        `json:"ascendant"`
	Planets   []sidereal.Position `json:"planets"`
}

// Build computes the natal chart for a birth at t and coordinates lat, lon.
func Build(p ephemeris.Provider, t time.Time, lat, lon float64) (*Natal, error) {
	t = t.UTC()
	if err := errors.ValidateDate(t); err != nil {
		return nil, err
	}
	asc, err := houses.Ascendant(t, lat, lon)
	if err != nil {
		return nil, err
	}
	ps, err := ephemeris.Positions(p, t)
	if err != nil {
		return nil, err
	}
	return &Natal{
		Birth:     t,
		Latitude:  lat,
		Longitude: lon,
		Ascendant: asc,
		Planets:   ps,
	}, nil
}

// Planet returns the natal position of body.
func (n *Natal) Planet(body graha.Body) (sidereal.Position, bool) {
	return sidereal.Find(n.Planets, body)
}

// Moon returns the natal Moon, which seeds the dasha timeline. It fails
// with MISSING_POSITION when the provider did not supply one.
func (n *Natal) Moon() (sidereal.Position, error) {
	p, ok := n.Planet(graha.Moon)
	if !ok {
		return sidereal.Position{}, errors.New(errors.ErrCodeMissingPosition, "natal chart has no Moon position")
	}
	return p, nil
}

// House returns the whole-sign house of a natal body, or 0 when the body
// is absent.
func (n *Natal) House(body graha.Body) int {
	p, ok := n.Planet(body)
	if !ok {
		return 0
	}
	return n.Ascendant.House(p.Sign)
}

// GroupBySign buckets natal bodies by sign.
func (n *Natal) GroupBySign() map[sidereal.Sign][]graha.Body {
	return sidereal.GroupBySign(n.Planets)
}
