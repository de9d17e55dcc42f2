package ephemeris

import (
	"math"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
)

// Kepler computes geocentric tropical longitudes from mean orbital elements
// referred to the equinox of date (P. Schlyter's low-precision theory).
// The zero value is ready to use and safe for concurrent use.
type Kepler struct{}

// Name implements Provider.
func (Kepler) Name() string { return string(KindKepler) }

// elements are the six classical orbital elements. Angles are in degrees,
// the semi-major axis in AU (Earth radii for the Moon).
type elements struct {
	N, i, w, a, e, M float64
}

// day number relative to 1999-12-31T00:00Z (JD 2451543.5).
func dayNumber(t time.Time) float64 {
	return sidereal.DaysSinceJ2000(t) + 1.5
}

var orbits = map[graha.Body]func(d float64) elements{
	graha.Sun: func(d float64) elements {
		return elements{0, 0, 282.9404 + 4.70935e-5*d, 1.0, 0.016709 - 1.151e-9*d, 356.0470 + 0.9856002585*d}
	},
	graha.Moon: func(d float64) elements {
		return elements{125.1228 - 0.0529538083*d, 5.1454, 318.0634 + 0.1643573223*d, 60.2666, 0.054900, 115.3654 + 13.0649929509*d}
	},
	graha.Mercury: func(d float64) elements {
		return elements{48.3313 + 3.24587e-5*d, 7.0047 + 5.00e-8*d, 29.1241 + 1.01444e-5*d, 0.387098, 0.205635 + 5.59e-10*d, 168.6562 + 4.0923344368*d}
	},
	graha.Venus: func(d float64) elements {
		return elements{76.6799 + 2.46590e-5*d, 3.3946 + 2.75e-8*d, 54.8910 + 1.38374e-5*d, 0.723330, 0.006773 - 1.302e-9*d, 48.0052 + 1.6021302244*d}
	},
	graha.Mars: func(d float64) elements {
		return elements{49.5574 + 2.11081e-5*d, 1.8497 - 1.78e-8*d, 286.5016 + 2.92961e-5*d, 1.523688, 0.093405 + 2.516e-9*d, 18.6021 + 0.5240207766*d}
	},
	graha.Jupiter: func(d float64) elements {
		return elements{100.4542 + 2.76854e-5*d, 1.3030 - 1.557e-7*d, 273.8777 + 1.64505e-5*d, 5.20256, 0.048498 + 4.469e-9*d, 19.8950 + 0.0830853001*d}
	},
	graha.Saturn: func(d float64) elements {
		return elements{113.6634 + 2.38980e-5*d, 2.4886 - 1.081e-7*d, 339.3939 + 2.97661e-5*d, 9.55475, 0.055546 - 9.499e-9*d, 316.9670 + 0.0334442282*d}
	},
}

// eccentricAnomaly solves Kepler's equation by Newton iteration.
// M is in degrees, the result in radians.
func eccentricAnomaly(M, e float64) float64 {
	m := rad(sidereal.Normalize(M))
	E := m + e*math.Sin(m)*(1+e*math.Cos(m))
	for range 10 {
		delta := (E - e*math.Sin(E) - m) / (1 - e*math.Cos(E))
		E -= delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}
	return E
}

// position returns ecliptic rectangular coordinates in the orbit's frame
// of reference (heliocentric for planets, geocentric for the Moon).
func (el elements) position() (x, y, z, r float64) {
	E := eccentricAnomaly(el.M, el.e)
	xv := el.a * (math.Cos(E) - el.e)
	yv := el.a * math.Sqrt(1-el.e*el.e) * math.Sin(E)
	v := math.Atan2(yv, xv)
	r = math.Hypot(xv, yv)

	N, i, w := rad(el.N), rad(el.i), rad(el.w)
	x = r * (math.Cos(N)*math.Cos(v+w) - math.Sin(N)*math.Sin(v+w)*math.Cos(i))
	y = r * (math.Sin(N)*math.Cos(v+w) + math.Cos(N)*math.Sin(v+w)*math.Cos(i))
	z = r * math.Sin(v+w) * math.Sin(i)
	return x, y, z, r
}

func sind(x float64) float64 { return math.Sin(rad(x)) }
func cosd(x float64) float64 { return math.Cos(rad(x)) }

// TropicalLongitudes implements Provider.
func (Kepler) TropicalLongitudes(t time.Time) (map[graha.Body]float64, error) {
	d := dayNumber(t)
	out := make(map[graha.Body]float64, len(graha.Physical))

	sun := orbits[graha.Sun](d)
	E := eccentricAnomaly(sun.M, sun.e)
	xv := math.Cos(E) - sun.e
	yv := math.Sqrt(1-sun.e*sun.e) * math.Sin(E)
	lonSun := math.Atan2(yv, xv) + rad(sun.w)
	rs := math.Hypot(xv, yv)
	xs, ys := rs*math.Cos(lonSun), rs*math.Sin(lonSun)
	out[graha.Sun] = sidereal.Normalize(deg(lonSun))

	out[graha.Moon] = moonLongitude(orbits[graha.Moon](d), sun)

	Mj := orbits[graha.Jupiter](d).M
	Ms := orbits[graha.Saturn](d).M
	for _, b := range []graha.Body{graha.Mercury, graha.Venus, graha.Mars, graha.Jupiter, graha.Saturn} {
		xh, yh, zh, r := orbits[b](d).position()
		lon := math.Atan2(yh, xh)
		lat := math.Atan2(zh, math.Hypot(xh, yh))

		switch b {
		case graha.Jupiter:
			lon += rad(-0.332*sind(2*Mj-5*Ms-67.6) -
				0.056*sind(2*Mj-2*Ms+21) +
				0.042*sind(3*Mj-5*Ms+21) -
				0.036*sind(Mj-2*Ms) +
				0.022*cosd(Mj-Ms) +
				0.023*sind(2*Mj-3*Ms+52) -
				0.016*sind(Mj-5*Ms-69))
		case graha.Saturn:
			lon += rad(0.812*sind(2*Mj-5*Ms-67.6) -
				0.229*cosd(2*Mj-4*Ms-2) +
				0.119*sind(Mj-2*Ms-3) +
				0.046*sind(2*Mj-6*Ms-69) +
				0.014*sind(Mj-3*Ms+32))
		}

		xh = r * math.Cos(lon) * math.Cos(lat)
		yh = r * math.Sin(lon) * math.Cos(lat)
		out[b] = sidereal.Normalize(deg(math.Atan2(yh+ys, xh+xs)))
	}
	return out, nil
}

// moonLongitude applies the twelve largest lunar perturbations to the
// Keplerian longitude.
func moonLongitude(moon, sun elements) float64 {
	x, y, _, _ := moon.position()
	lon := deg(math.Atan2(y, x))

	Ms, Mm := sun.M, moon.M
	Ls := Ms + sun.w
	Lm := Mm + moon.w + moon.N
	D := Lm - Ls
	F := Lm - moon.N

	lon += -1.274*sind(Mm-2*D) + // evection
		0.658*sind(2*D) - // variation
		0.186*sind(Ms) - // yearly equation
		0.059*sind(2*Mm-2*D) -
		0.057*sind(Mm-2*D+Ms) +
		0.053*sind(Mm+2*D) +
		0.046*sind(2*D-Ms) +
		0.041*sind(Mm-Ms) -
		0.035*sind(D) - // parallactic
		0.031*sind(Mm+Ms) -
		0.015*sind(2*F-2*D) +
		0.011*sind(Mm-4*D)

	return sidereal.Normalize(lon)
}
