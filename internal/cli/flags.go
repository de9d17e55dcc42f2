package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jyotish/pkg/config"
	"github.com/matzehuels/jyotish/pkg/errors"
	"github.com/matzehuels/jyotish/pkg/pipeline"
)

// timeLayouts are accepted for --birth and --at. Layouts without a zone
// are read as UTC.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// parseTime parses s with the first matching layout in timeLayouts.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New(errors.ErrCodeInvalidDate, "invalid time %q (want RFC 3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD)", s)
}

// chartFlags are the birth inputs shared by every chart-based command.
type chartFlags struct {
	birth   string
	lat     float64
	lon     float64
	at      string
	noCache bool
	refresh bool
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.birth, "birth", "b", "", "birth instant, e.g. 1990-07-15T12:00:00+05:30 (required)")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "birth latitude in degrees, north positive")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "birth longitude in degrees, east positive")
	cmd.Flags().StringVar(&f.at, "at", "", "reference instant (default now)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached reports")
	_ = cmd.MarkFlagRequired("birth")
}

// options converts the flags into pipeline options. Coordinates fall back
// to the configured default location.
func (f *chartFlags) options(cmd *cobra.Command, cfg config.Config) (pipeline.Options, error) {
	var opts pipeline.Options

	birth, err := parseTime(f.birth)
	if err != nil {
		return opts, err
	}
	opts.Birth = birth

	lat, lon, ok := cfg.DefaultLocation()
	latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
	switch {
	case latSet && lonSet:
		lat, lon = f.lat, f.lon
	case latSet || lonSet:
		return opts, errors.New(errors.ErrCodeInvalidInput, "--lat and --lon must be given together")
	case !ok:
		return opts, errors.New(errors.ErrCodeInvalidInput, "--lat and --lon are required (or set [location] in the config file)")
	}
	opts.Latitude, opts.Longitude = lat, lon

	if f.at != "" {
		if opts.At, err = parseTime(f.at); err != nil {
			return opts, err
		}
	}
	opts.Refresh = f.refresh
	opts.Logger = loggerFromContext(cmd.Context())
	return opts, nil
}
