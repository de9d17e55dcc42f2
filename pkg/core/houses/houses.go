// Package houses computes the ascendant (lagna) and whole-sign house
// numbers.
//
// Sidereal time follows the IAU 1982 GMST polynomial and the obliquity is
// the mean value; nutation is ignored. Both are well inside the precision
// of a whole-sign house system.
package houses

import (
	"math"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/sidereal"
	"github.com/matzehuels/jyotish/pkg/errors"
)

// GMST returns Greenwich mean sidereal time at t, in degrees [0, 360).
func GMST(t time.Time) float64 {
	d := sidereal.DaysSinceJ2000(t)
	c := d / 36525
	return sidereal.Normalize(280.46061837 + 360.98564736629*d + 0.000387933*c*c - c*c*c/38710000)
}

// LocalSiderealTime returns the right ascension of the meridian at
// longitude lon (east positive), in degrees.
func LocalSiderealTime(t time.Time, lon float64) float64 {
	return sidereal.Normalize(GMST(t) + lon)
}

// MeanObliquity returns the mean obliquity of the ecliptic at t, in degrees.
func MeanObliquity(t time.Time) float64 {
	c := sidereal.DaysSinceJ2000(t) / 36525
	return 23.439291 - 0.0130042*c
}

// AscendantLongitude returns the tropical longitude rising on the eastern
// horizon at t for an observer at lat, lon. The caller is responsible for
// validating coordinates.
func AscendantLongitude(t time.Time, lat, lon float64) float64 {
	ramc := rad(LocalSiderealTime(t, lon))
	eps := rad(MeanObliquity(t))
	phi := rad(lat)

	y := math.Cos(ramc)
	x := -(math.Sin(ramc)*math.Cos(eps) + math.Tan(phi)*math.Sin(eps))
	return sidereal.Normalize(math.Atan2(y, x) * 180 / math.Pi)
}

// Lagna is the sidereal ascendant of a chart.
type Lagna struct {
	Longitude float64            `json:"longitude"` // sidereal
	Tropical  float64            `json:"tropical_longitude"`
	Sign      sidereal.Sign      `json:"sign"`
	Degree    int                `json:"degree"`
	Minute    int                `json:"minute"`
	Nakshatra sidereal.Nakshatra `json:"nakshatra"`
	Pada      int                `json:"pada"`
}

// Ascendant returns the sidereal lagna at t for an observer at lat, lon.
// Latitudes must lie strictly between the poles.
func Ascendant(t time.Time, lat, lon float64) (Lagna, error) {
	if err := errors.ValidateLatitude(lat); err != nil {
		return Lagna{}, err
	}
	if err := errors.ValidateLongitude(lon); err != nil {
		return Lagna{}, err
	}

	trop := AscendantLongitude(t, lat, lon)
	sid := sidereal.ToSidereal(trop, t)
	si := sidereal.ToSignInfo(sid)
	ni := sidereal.ToNakshatraInfo(sid)
	return Lagna{
		Longitude: sid,
		Tropical:  trop,
		Sign:      si.Sign,
		Degree:    si.Degree,
		Minute:    si.Minute,
		Nakshatra: ni.Nakshatra,
		Pada:      ni.Pada,
	}, nil
}

// House returns the whole-sign house of a body in sign for this lagna.
func (l Lagna) House(sign sidereal.Sign) int {
	return HouseNumber(sign, l.Sign)
}

// HouseNumber returns the whole-sign house (1-12) of a body in sign for a
// chart rising in asc.
func HouseNumber(sign, asc sidereal.Sign) int {
	return (int(sign)-int(asc)+12)%12 + 1
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
