package pipeline

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/jyotish/pkg/core/chart"
	"github.com/matzehuels/jyotish/pkg/core/ephemeris"
	"github.com/matzehuels/jyotish/pkg/core/transit"
)

// calendar rates each day of the month from positions at 12:00 UTC.
// Days are independent, so they are computed concurrently.
func (r *Runner) calendar(ctx context.Context, natal *chart.Natal, year int, month time.Month) (*CalendarReport, error) {
	first := time.Date(year, month, 1, 12, 0, 0, 0, time.UTC)
	n := first.AddDate(0, 1, 0).Sub(first).Hours() / 24
	days := make([]Day, int(n))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range days {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			at := first.AddDate(0, 0, i)
			positions, err := ephemeris.Positions(r.Provider, at)
			if err != nil {
				return err
			}
			score := transit.DayScore(natal, positions)
			days[i] = Day{Date: at, Score: score, Rating: transit.Rate(score)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Logger.Debug("computed calendar", "year", year, "month", month, "days", len(days))
	return &CalendarReport{Year: year, Month: int(month), Days: days}, nil
}
