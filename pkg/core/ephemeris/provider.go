// Package ephemeris supplies tropical ecliptic longitudes for the grahas.
//
// A [Provider] returns geocentric tropical longitudes (equinox of date) for
// the seven physical bodies. The lunar nodes are computed locally by
// [RahuLongitude], so every provider yields all nine bodies once passed
// through [Positions].
//
// Two providers ship with the package:
//   - [Kepler]: mean orbital elements with the principal perturbations.
//     Accurate to a few arcminutes over several centuries around J2000.
//   - [Table]: linear interpolation over tabulated longitudes loaded from
//     CSV, for plugging in output from a high-precision ephemeris.
package ephemeris

import (
	"strings"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
	"github.com/matzehuels/jyotish/pkg/errors"
)

// Provider defines the interface for ephemeris data sources.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// TropicalLongitudes returns tropical ecliptic longitudes in degrees
	// for the physical bodies at t. Bodies the provider cannot supply are
	// omitted from the map.
	TropicalLongitudes(t time.Time) (map[graha.Body]float64, error)
}

// Func adapts a plain function into a Provider.
type Func func(t time.Time) (map[graha.Body]float64, error)

// Name implements Provider.
func (f Func) Name() string { return "func" }

// TropicalLongitudes implements Provider.
func (f Func) TropicalLongitudes(t time.Time) (map[graha.Body]float64, error) {
	return f(t)
}

// Positions returns the sidereal positions of all available grahas at t,
// in [graha.All] order. Rahu and Ketu are always present; a physical body
// the provider omits is absent from the result.
func Positions(p Provider, t time.Time) ([]sidereal.Position, error) {
	lons, err := p.TropicalLongitudes(t)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEphemeris, err, "%s: longitudes at %s", p.Name(), t.UTC().Format(time.RFC3339))
	}

	out := make([]sidereal.Position, 0, graha.Count)
	for _, b := range graha.Physical {
		lon, ok := lons[b]
		if !ok {
			continue
		}
		out = append(out, sidereal.NewPosition(b, lon, t))
	}

	rahu := RahuLongitude(t)
	out = append(out,
		sidereal.NewPosition(graha.Rahu, rahu, t),
		sidereal.NewPosition(graha.Ketu, KetuLongitude(t), t),
	)
	return out, nil
}

// Kind identifies a built-in provider.
type Kind string

const (
	KindKepler Kind = "kepler"
	KindTable  Kind = "table"
)

// ParseKind parses a provider name. The empty string selects Kepler.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindKepler:
		return KindKepler, nil
	case KindTable:
		return KindTable, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "unknown ephemeris provider %q (want kepler or table)", s)
}

// Open constructs a built-in provider. tablePath is required for KindTable.
func Open(kind Kind, tablePath string) (Provider, error) {
	switch kind {
	case "", KindKepler:
		return Kepler{}, nil
	case KindTable:
		return LoadTable(tablePath)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown ephemeris provider %q", kind)
}
