package sidereal

import (
	"fmt"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/graha"
)

// Position is the sidereal placement of one body at one instant.
// Values are immutable once built by [NewPosition].
type Position struct {
	Body      graha.Body `json:"body"`
	Longitude float64    `json:"longitude"`          // sidereal, [0, 360)
	Tropical  float64    `json:"tropical_longitude"` // tropical, [0, 360)
	Sign      Sign       `json:"sign"`
	Degree    int        `json:"degree"`
	Minute    int        `json:"minute"`
	Nakshatra Nakshatra  `json:"nakshatra"`
	Pada      int        `json:"pada"`
}

// NewPosition converts a tropical longitude observed at t into a Position.
func NewPosition(body graha.Body, tropical float64, t time.Time) Position {
	tropical = Normalize(tropical)
	return FromSidereal(body, ToSidereal(tropical, t), tropical)
}

// FromSidereal builds a Position from an already-sidereal longitude.
// tropical is carried through unchanged for display.
func FromSidereal(body graha.Body, lon, tropical float64) Position {
	lon = Normalize(lon)
	si := ToSignInfo(lon)
	ni := ToNakshatraInfo(lon)
	return Position{
		Body:      body,
		Longitude: lon,
		Tropical:  tropical,
		Sign:      si.Sign,
		Degree:    si.Degree,
		Minute:    si.Minute,
		Nakshatra: ni.Nakshatra,
		Pada:      ni.Pada,
	}
}

// DMS formats the in-sign offset as e.g. "15°30′".
func (p Position) DMS() string {
	return fmt.Sprintf("%d°%02d′", p.Degree, p.Minute)
}

// Find returns the position for body, if present.
func Find(positions []Position, body graha.Body) (Position, bool) {
	for _, p := range positions {
		if p.Body == body {
			return p, true
		}
	}
	return Position{}, false
}

// GroupBySign buckets positions by sign, preserving input order inside each
// bucket. Signs without bodies are absent from the map.
func GroupBySign(positions []Position) map[Sign][]graha.Body {
	grouped := make(map[Sign][]graha.Body)
	for _, p := range positions {
		grouped[p.Sign] = append(grouped[p.Sign], p.Body)
	}
	return grouped
}
