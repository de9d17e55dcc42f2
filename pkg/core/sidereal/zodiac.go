package sidereal

import (
	"fmt"
	"strings"

	"github.com/matzehuels/jyotish/pkg/errors"
)

// Sign is a sidereal zodiac sign, Aries = 0 through Pisces = 11.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer",
	"Leo", "Virgo", "Libra", "Scorpio",
	"Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

var signSymbols = [12]string{
	"♈", "♉", "♊", "♋", "♌", "♍", "♎", "♏", "♐", "♑", "♒", "♓",
}

// Valid reports whether s is one of the twelve signs.
func (s Sign) Valid() bool { return s >= Aries && s <= Pisces }

func (s Sign) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Sign(%d)", int(s))
	}
	return signNames[s]
}

// Symbol returns the unicode glyph for the sign.
func (s Sign) Symbol() string {
	if !s.Valid() {
		return "?"
	}
	return signSymbols[s]
}

// Start returns the sidereal longitude at which the sign begins.
func (s Sign) Start() float64 { return float64(s) * SignSpan }

// MarshalText encodes the sign by name.
func (s Sign) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid sign %d", int(s))
	}
	return []byte(signNames[s]), nil
}

// UnmarshalText decodes a sign name, case-insensitively.
func (s *Sign) UnmarshalText(text []byte) error {
	parsed, err := ParseSign(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSign resolves a sign name.
func ParseSign(name string) (Sign, error) {
	name = strings.TrimSpace(name)
	for i, n := range signNames {
		if strings.EqualFold(n, name) {
			return Sign(i), nil
		}
	}
	return -1, errors.New(errors.ErrCodeInvalidInput, "unknown sign %q", name)
}

// Nakshatra is a lunar mansion, Ashwini = 0 through Revati = 26.
type Nakshatra int

var nakshatraNames = [27]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira",
	"Ardra", "Punarvasu", "Pushya", "Ashlesha", "Magha",
	"Purva Phalguni", "Uttara Phalguni", "Hasta", "Chitra", "Swati",
	"Vishakha", "Anuradha", "Jyeshtha", "Moola", "Purva Ashadha",
	"Uttara Ashadha", "Shravana", "Dhanishta", "Shatabhisha",
	"Purva Bhadrapada", "Uttara Bhadrapada", "Revati",
}

// Valid reports whether n is one of the 27 nakshatras.
func (n Nakshatra) Valid() bool { return n >= 0 && n < 27 }

func (n Nakshatra) String() string {
	if !n.Valid() {
		return fmt.Sprintf("Nakshatra(%d)", int(n))
	}
	return nakshatraNames[n]
}

// Start returns the sidereal longitude at which the nakshatra begins.
func (n Nakshatra) Start() float64 { return float64(n) * NakshatraSpan }

// MarshalText encodes the nakshatra by name.
func (n Nakshatra) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid nakshatra %d", int(n))
	}
	return []byte(nakshatraNames[n]), nil
}

// UnmarshalText decodes a nakshatra name, case-insensitively.
func (n *Nakshatra) UnmarshalText(text []byte) error {
	name := strings.TrimSpace(string(text))
	for i, v := range nakshatraNames {
		if strings.EqualFold(v, name) {
			*n = Nakshatra(i)
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown nakshatra %q", name)
}
