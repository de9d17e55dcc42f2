// Package graha defines the nine bodies of Vedic astrology and their fixed
// attributes: two-letter keys, display names, glyphs, natural temperament
// and the house distances they aspect.
//
// Bodies are small integers so they can index arrays; use [Body.Key] for
// stable serialized identifiers.
package graha

import (
	"fmt"
	"strings"

	"github.com/matzehuels/jyotish/pkg/errors"
)

// Body is one of the nine grahas.
type Body int

// The nine grahas, in ephemeris output order.
const (
	Sun Body = iota
	Moon
	Mars
	Mercury
	Jupiter
	Venus
	Saturn
	Rahu
	Ketu
)

// Count is the number of grahas.
const Count = 9

// All lists every body in ephemeris output order.
var All = [Count]Body{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn, Rahu, Ketu}

// Physical lists the seven bodies whose longitudes come from an ephemeris.
// The lunar nodes are derived, not observed.
var Physical = [7]Body{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn}

// SlowFirst orders bodies from slowest to fastest for transit listings.
var SlowFirst = [Count]Body{Saturn, Jupiter, Rahu, Ketu, Mars, Venus, Sun, Mercury, Moon}

// Nature is the natural temperament of a body.
type Nature int

const (
	Benefic Nature = iota
	Malefic
	Mild
)

func (n Nature) String() string {
	switch n {
	case Benefic:
		return "benefic"
	case Malefic:
		return "malefic"
	case Mild:
		return "mild"
	}
	return "unknown"
}

type attrs struct {
	key     string
	name    string
	symbol  string
	nature  Nature
	aspects []int
}

var table = [Count]attrs{
	Sun:     {"Su", "Sun", "☉", Mild, []int{7}},
	Moon:    {"Mo", "Moon", "☽", Benefic, []int{7}},
	Mars:    {"Ma", "Mars", "♂", Malefic, []int{4, 7, 8}},
	Mercury: {"Me", "Mercury", "☿", Benefic, []int{7}},
	Jupiter: {"Ju", "Jupiter", "♃", Benefic, []int{5, 7, 9}},
	Venus:   {"Ve", "Venus", "♀", Benefic, []int{7}},
	Saturn:  {"Sa", "Saturn", "♄", Malefic, []int{3, 7, 10}},
	Rahu:    {"Ra", "Rahu", "☊", Malefic, []int{5, 7, 9}},
	Ketu:    {"Ke", "Ketu", "☋", Malefic, []int{5, 7, 9}},
}

// Valid reports whether b is one of the nine grahas.
func (b Body) Valid() bool {
	return b >= Sun && b <= Ketu
}

// Key returns the two-letter identifier ("Su", "Mo", ...).
func (b Body) Key() string {
	if !b.Valid() {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return table[b].key
}

// Name returns the English display name.
func (b Body) Name() string {
	if !b.Valid() {
		return b.Key()
	}
	return table[b].name
}

// Symbol returns the astronomical glyph.
func (b Body) Symbol() string {
	if !b.Valid() {
		return b.Key()
	}
	return table[b].symbol
}

// Nature returns the natural temperament used by transit scoring.
func (b Body) Nature() Nature {
	if !b.Valid() {
		return Mild
	}
	return table[b].nature
}

// IsBenefic reports whether b is a natural benefic.
func (b Body) IsBenefic() bool { return b.Valid() && table[b].nature == Benefic }

// IsMalefic reports whether b is a natural malefic.
func (b Body) IsMalefic() bool { return b.Valid() && table[b].nature == Malefic }

// IsSlow reports whether b is one of the slow movers weighted double in
// day scoring (Saturn, Jupiter and the nodes).
func (b Body) IsSlow() bool {
	switch b {
	case Saturn, Jupiter, Rahu, Ketu:
		return true
	}
	return false
}

// Aspects returns the house distances b aspects. A distance counts the
// body's own house as the 1st, so the 7th is the opposite house. Every
// body aspects the 7th; Mars, Jupiter, Saturn and the nodes have special
// aspects. The returned slice is a copy.
func (b Body) Aspects() []int {
	if !b.Valid() {
		return []int{7}
	}
	return append([]int(nil), table[b].aspects...)
}

func (b Body) String() string { return b.Key() }

// MarshalText encodes the body as its two-letter key.
func (b Body) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidBody, "invalid body %d", int(b))
	}
	return []byte(table[b].key), nil
}

// UnmarshalText decodes a two-letter key or a full name.
func (b *Body) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Parse resolves a two-letter key ("Sa") or an English name ("saturn"),
// case-insensitively.
func Parse(s string) (Body, error) {
	s = strings.TrimSpace(s)
	for i, a := range table {
		if strings.EqualFold(s, a.key) || strings.EqualFold(s, a.name) {
			return Body(i), nil
		}
	}
	return -1, errors.New(errors.ErrCodeInvalidBody, "unknown body %q", s)
}

// Keys returns the two-letter keys of all bodies in ephemeris order.
func Keys() []string {
	keys := make([]string, 0, Count)
	for _, b := range All {
		keys = append(keys, b.Key())
	}
	return keys
}
