// Package pipeline provides the computation pipeline shared by the CLI and
// the HTTP API.
//
// The pipeline has four stages, each cached independently:
//
//  1. Chart: ascendant and natal positions for a birth
//  2. Dasha: the Vimshottari timeline and the periods running at a date
//  3. Transits: current positions analyzed against the chart, optionally
//     with sign-stay and conjunction timing
//  4. Calendar: a day rating for every day of a month
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, ephemeris.Kepler{}, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Birth:     birth,
//	    Latitude:  28.6139,
//	    Longitude: 77.2090,
//	    Timing:    true,
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Dasha.Current.Maha.Lord)
//
// Stages can also be run on their own once a chart exists:
//
//	natal, err := runner.Chart(ctx, opts)
//	report, err := runner.Transits(ctx, natal, opts, engine)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jyotish/pkg/cache"
	"github.com/matzehuels/jyotish/pkg/core/chart"
	"github.com/matzehuels/jyotish/pkg/core/dasha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
	"github.com/matzehuels/jyotish/pkg/core/transit"
	"github.com/matzehuels/jyotish/pkg/errors"
)

// Stage names reported to observability hooks.
const (
	StageChart    = "chart"
	StageDasha    = "dasha"
	StageTransits = "transits"
	StageCalendar = "calendar"
)

// Options contains all inputs of a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Chart inputs
	Birth     time.Time `json:"birth"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`

	// At is the reference instant for dasha and transits. Defaults to now.
	At time.Time `json:"at,omitzero"`

	// Timing adds sign-stay and conjunction timing to transits.
	Timing bool `json:"timing,omitempty"`

	// Year and Month select the calendar. Default to At's month.
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger      `json:"-"`
	Now    func() time.Time `json:"-"`
}

// ValidateForChart checks the birth data.
func (o *Options) ValidateForChart() error {
	if err := errors.ValidateDate(o.Birth); err != nil {
		return err
	}
	if err := errors.ValidateLatitude(o.Latitude); err != nil {
		return err
	}
	if err := errors.ValidateLongitude(o.Longitude); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetDefaults fills the reference instant and calendar month.
func (o *Options) SetDefaults() {
	if o.At.IsZero() {
		now := time.Now
		if o.Now != nil {
			now = o.Now
		}
		o.At = now()
	}
	o.At = o.At.UTC()
	if o.Year == 0 && o.Month == 0 {
		o.Year, o.Month = o.At.Year(), int(o.At.Month())
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForReports applies defaults and checks the reference inputs.
func (o *Options) ValidateForReports() error {
	o.SetDefaults()
	if err := errors.ValidateDate(o.At); err != nil {
		return err
	}
	return errors.ValidateMonth(o.Year, o.Month)
}

// ValidateAndSetDefaults prepares options for a full run.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForChart(); err != nil {
		return err
	}
	return o.ValidateForReports()
}

// ChartKeyOpts returns the cache key options for the chart stage.
func (o *Options) ChartKeyOpts(provider string) cache.ChartKeyOpts {
	return cache.ChartKeyOpts{
		Birth:     o.Birth,
		Latitude:  o.Latitude,
		Longitude: o.Longitude,
		Provider:  provider,
	}
}

// DashaReport is the dasha stage output.
type DashaReport struct {
	At       time.Time      `json:"at"`
	Timeline dasha.Timeline `json:"timeline"`
	Current  *dasha.Current `json:"current,omitempty"`
}

// TransitReport is the transit stage output.
type TransitReport struct {
	At        time.Time           `json:"at"`
	Positions []sidereal.Position `json:"positions"`
	Transits  []transit.Transit   `json:"transits"`
	Score     float64             `json:"score"`
	Rating    transit.DayRating   `json:"rating"`
}

// Day is one calendar cell.
type Day struct {
	Date   time.Time         `json:"date"`
	Score  float64           `json:"score"`
	Rating transit.DayRating `json:"rating"`
}

// CalendarReport is the calendar stage output.
type CalendarReport struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Days  []Day `json:"days"`
}

// Result contains the outputs of a full pipeline run.
type Result struct {
	Chart     *chart.Natal
	ChartHash string
	Dasha     *DashaReport
	Transits  *TransitReport
	Calendar  *CalendarReport
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains per-stage wall time.
type Stats struct {
	ChartTime    time.Duration
	DashaTime    time.Duration
	TransitTime  time.Duration
	CalendarTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ChartHit    bool
	DashaHit    bool
	TransitHit  bool
	CalendarHit bool
}
