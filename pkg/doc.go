// Package pkg provides the core libraries for jyotish, a Vedic sidereal
// astrology toolkit.
//
// # Overview
//
// jyotish turns tropical ecliptic longitudes into sidereal (Lahiri)
// positions and derives the classic Vedic reports from them: the natal
// chart, the Vimshottari dasha timeline and transit timing. The pkg
// directory is organized into three areas:
//
//  1. [core] - Domain logic (bodies, zodiac, ephemeris, dasha, timing, transits)
//  2. [pipeline] - Orchestration (chart → dasha → transits → calendar), cached
//  3. Infrastructure ([cache], [config], [session], [api], [observability])
//
// # Architecture
//
// The typical data flow:
//
//	ephemeris.Provider (tropical longitudes)
//	         ↓
//	    [core/sidereal] (ayanamsha, sign, nakshatra, pada)
//	         ↓
//	    [core/chart] (ascendant + natal positions)
//	         ↓
//	    [core/dasha]   [core/transit] ← [core/timing]
//	         ↓
//	    reports (JSON, CLI tables, HTTP)
//
// # Quick Start
//
// Build a chart and time the current transits:
//
//	import (
//	    "github.com/matzehuels/jyotish/pkg/core/chart"
//	    "github.com/matzehuels/jyotish/pkg/core/ephemeris"
//	    "github.com/matzehuels/jyotish/pkg/core/timing"
//	    "github.com/matzehuels/jyotish/pkg/core/transit"
//	)
//
//	// 1. Natal chart
//	natal, _ := chart.Build(ephemeris.Kepler{}, birth, 28.6139, 77.2090)
//
//	// 2. Positions now
//	now := time.Now()
//	positions, _ := ephemeris.Positions(ephemeris.Kepler{}, now)
//
//	// 3. Transits with sign-stay and conjunction timing
//	engine, _ := timing.NewEngine(ephemeris.Kepler{})
//	for _, tr := range transit.WithTiming(natal, positions, now, engine) {
//	    fmt.Println(tr.Body, tr.Sign, tr.Description)
//	}
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/graha] - The nine bodies with their keys, glyphs, natural
// temperament and special aspects.
//
// [core/sidereal] - Lahiri ayanamsha, tropical/sidereal conversion and the
// sign, nakshatra and pada of a longitude.
//
// [core/ephemeris] - The Provider interface plus the Kepler (mean elements)
// and Table (interpolated CSV) providers. Rahu and Ketu are derived here.
//
// [core/houses] - Ascendant from sidereal time and obliquity; whole-sign
// house numbers.
//
// [core/dasha] - Vimshottari maha and antar periods from the natal Moon.
//
// [core/timing] - Retrograde-aware sign entry/exit search and conjunction
// timing, with bounded position and stay caches.
//
// [core/transit] - House, quality, conjunction and aspect analysis of a
// transit against a natal chart, and day ratings.
//
// ## Infrastructure
//
// [pipeline] - The staged, cached computation used by both the CLI and the
// HTTP API.
//
// [cache] - Byte cache with null, file and Redis backends and content-hash
// keys.
//
// [session] - Per-chart sessions owning a warm timing engine.
//
// [api] - chi HTTP server over sessions and the pipeline.
//
// [config] - TOML file plus JYOTISH_* environment overrides.
//
// [observability] - Hooks with a Prometheus backend.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                        # All tests
//	go test ./pkg/core/timing/...            # Specific package
//	JYOTISH_TEST_REDIS=localhost:6379 \
//	    go test ./pkg/cache/...              # Include the Redis backend
//
// [core]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/core
// [core/graha]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/core/graha
// [core/sidereal]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/core/sidereal
// [core/ephemeris]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/core/ephemeris
// [core/houses]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/core/houses
// [core/chart]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/core/chart
// [core/dasha]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/core/dasha
// [core/timing]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/core/timing
// [core/transit]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/core/transit
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/session
// [api]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/api
// [config]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/jyotish/pkg/observability
package pkg
