// Package cli implements the jyotish command-line interface.
//
// Commands compute a natal chart from --birth, --lat and --lon, then derive
// reports from it through a shared, cached [pipeline.Runner]:
//   - chart: ascendant and natal positions
//   - dasha: Vimshottari timeline and running periods
//   - transits: transit analysis, optionally with sign-stay timing
//   - calendar: day ratings for a month
//   - positions: sidereal positions at an instant (no chart)
//   - serve: the HTTP API
//   - cache: manage the file report cache
//
// # Configuration
//
// Settings come from $XDG_CONFIG_HOME/jyotish/config.toml (or --config),
// then JYOTISH_* environment variables, then flags. All commands support
// --verbose (-v) for debug-level logging and --json for machine output.
// The logger is passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jyotish/pkg/config"
)

// logTimeFormat keeps centiseconds so timing searches can be told apart.
const logTimeFormat = "15:04:05.00"

// newLogger returns a timestamped logger writing to w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// logLevel resolves the effective level: --verbose wins over [log] level.
func logLevel(cfg config.Config, verbose bool) log.Level {
	if verbose {
		return LogDebug
	}
	return cfg.LogLevel()
}

// progress logs how long a stage took once it finishes.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs e.g. "Rated calendar (412ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger set by the root command. Flag
// helpers run before PersistentPreRunE, when cobra's context may still be
// nil; those get log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return log.Default()
	}
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
