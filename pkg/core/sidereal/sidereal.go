// Package sidereal converts tropical ecliptic longitudes into the sidereal
// zodiac used by Vedic astrology and maps sidereal longitudes onto signs
// (rashi) and lunar mansions (nakshatra).
//
// The ayanamsha is the Lahiri value, modelled linearly from its J2000.0
// value with a constant precession rate. Every function in this package is
// pure and total: longitudes outside [0, 360) are normalised rather than
// rejected.
package sidereal

import (
	"math"
	"time"
)

const (
	// LahiriJ2000 is the Lahiri ayanamsha at the J2000.0 epoch, in degrees.
	LahiriJ2000 = 24.0417

	// PrecessionRate is the general precession in degrees per Julian year
	// (50.2888 arcseconds).
	PrecessionRate = 50.2888 / 3600

	// DaysPerYear is the length of the Julian year used for all year
	// arithmetic in this module.
	DaysPerYear = 365.25

	// SignSpan is the width of one zodiac sign in degrees.
	SignSpan = 30.0

	// NakshatraSpan is the width of one nakshatra (13°20′) in degrees.
	NakshatraSpan = 360.0 / 27

	// PadaSpan is the width of one nakshatra quarter (3°20′) in degrees.
	PadaSpan = NakshatraSpan / 4
)

// J2000 is the J2000.0 epoch, 2000-01-01T12:00:00Z.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

const msPerDay = 86_400_000

// DaysSinceJ2000 returns the signed number of days between J2000.0 and t.
// Millisecond arithmetic avoids the ±292 year range of time.Duration.
func DaysSinceJ2000(t time.Time) float64 {
	return float64(t.UnixMilli()-J2000.UnixMilli()) / msPerDay
}

// Ayanamsha returns the Lahiri ayanamsha in degrees at instant t.
// It grows linearly: LahiriJ2000 at J2000.0, plus PrecessionRate per year.
func Ayanamsha(t time.Time) float64 {
	years := DaysSinceJ2000(t) / DaysPerYear
	return LahiriJ2000 + PrecessionRate*years
}

// ToSidereal converts a tropical longitude at instant t to a sidereal
// longitude in [0, 360).
func ToSidereal(tropical float64, t time.Time) float64 {
	return Normalize(tropical - Ayanamsha(t))
}

// ToTropical is the inverse of [ToSidereal].
func ToTropical(sidereal float64, t time.Time) float64 {
	return Normalize(sidereal + Ayanamsha(t))
}

// Normalize folds any finite angle into [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -1e-15 + 360 rounds to 360 in float64.
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// AngularDistance returns the shortest arc between two longitudes, in [0, 180].
func AngularDistance(a, b float64) float64 {
	d := math.Abs(Normalize(a) - Normalize(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// SignInfo is a longitude broken down into sign, whole degrees and minutes.
type SignInfo struct {
	Sign   Sign `json:"sign"`
	Degree int  `json:"degree"` // 0-29
	Minute int  `json:"minute"` // 0-59
}

// ToSignInfo maps a sidereal longitude onto its sign, degree and minute.
//
// Minutes are rounded to the nearest whole minute. A minute that rounds up
// to 60 carries into the degree; on the last degree of a sign the result is
// clamped to 29°59′ so that the sign always satisfies
// Sign*30 <= lon < (Sign+1)*30.
func ToSignInfo(lon float64) SignInfo {
	lon = Normalize(lon)
	idx := int(math.Floor(lon / SignSpan))
	if idx > 11 {
		idx = 11
	}
	inSign := lon - float64(idx)*SignSpan
	deg := int(math.Floor(inSign))
	minute := int(math.Round((inSign - float64(deg)) * 60))
	if minute == 60 {
		deg++
		minute = 0
	}
	if deg >= 30 {
		deg, minute = 29, 59
	}
	return SignInfo{Sign: Sign(idx), Degree: deg, Minute: minute}
}

// SignOf returns just the sign containing lon.
func SignOf(lon float64) Sign {
	idx := int(math.Floor(Normalize(lon) / SignSpan))
	if idx > 11 {
		idx = 11
	}
	return Sign(idx)
}

// NakshatraInfo is a longitude broken down into nakshatra and pada.
type NakshatraInfo struct {
	Nakshatra Nakshatra `json:"nakshatra"`
	Pada      int       `json:"pada"` // 1-4
}

// ToNakshatraInfo maps a sidereal longitude onto its nakshatra and pada.
func ToNakshatraInfo(lon float64) NakshatraInfo {
	lon = Normalize(lon)
	idx := int(math.Floor(lon / NakshatraSpan))
	if idx > 26 {
		idx = 26
	}
	rem := lon - float64(idx)*NakshatraSpan
	pada := int(math.Floor(rem/PadaSpan)) + 1
	pada = min(max(pada, 1), 4)
	return NakshatraInfo{Nakshatra: Nakshatra(idx), Pada: pada}
}

// NakshatraFraction returns the nakshatra containing lon and how far
// through it lon lies, in [0, 1).
func NakshatraFraction(lon float64) (Nakshatra, float64) {
	lon = Normalize(lon)
	idx := int(math.Floor(lon / NakshatraSpan))
	if idx > 26 {
		idx = 26
	}
	f := (lon - float64(idx)*NakshatraSpan) / NakshatraSpan
	return Nakshatra(idx), math.Min(math.Max(f, 0), math.Nextafter(1, 0))
}
