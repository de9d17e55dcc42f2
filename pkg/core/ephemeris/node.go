package ephemeris

import (
	"math"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/sidereal"
)

// RahuLongitude returns the tropical longitude of the Moon's ascending node.
//
// The mean node (Meeus, Astronomical Algorithms ch. 47) is corrected by the
// five largest periodic terms in the Delaunay arguments, which brings it
// within a few arcminutes of the true node.
func RahuLongitude(t time.Time) float64 {
	T := sidereal.DaysSinceJ2000(t) / 36525
	T2 := T * T
	T3 := T2 * T
	T4 := T2 * T2

	omega := 125.0445479 - 1934.1362891*T + 0.0020754*T2 + T3/467441 - T4/60616000

	D := rad(297.8501921 + 445267.1114034*T - 0.0018819*T2 + T3/545868 - T4/113065000)
	M := rad(357.5291092 + 35999.0502909*T - 0.0001536*T2 + T3/24490000)
	Mp := rad(134.9633964 + 477198.8675055*T + 0.0087414*T2 + T3/69699 - T4/14712000)
	F := rad(93.2720950 + 483202.0175233*T - 0.0036539*T2 - T3/3526000 + T4/863310000)

	omega += -1.4979*math.Sin(2*(D-F)) -
		0.1500*math.Sin(M) -
		0.1226*math.Sin(2*D) +
		0.1176*math.Sin(2*F) -
		0.0801*math.Sin(2*(Mp-F))

	return sidereal.Normalize(omega)
}

// KetuLongitude returns the tropical longitude of the descending node,
// always opposite Rahu.
func KetuLongitude(t time.Time) float64 {
	return sidereal.Normalize(RahuLongitude(t) + 180)
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

func deg(rad float64) float64 { return rad * 180 / math.Pi }
