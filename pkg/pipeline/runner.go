package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jyotish/pkg/cache"
	"github.com/matzehuels/jyotish/pkg/core/chart"
	"github.com/matzehuels/jyotish/pkg/core/dasha"
	"github.com/matzehuels/jyotish/pkg/core/ephemeris"
	"github.com/matzehuels/jyotish/pkg/core/timing"
	"github.com/matzehuels/jyotish/pkg/core/transit"
	"github.com/matzehuels/jyotish/pkg/errors"
	"github.com/matzehuels/jyotish/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so that caching behaves the same everywhere.
//
// The Runner holds no per-chart state; timing engines are passed in by the
// caller (usually a session). Multiple goroutines can safely share one
// Runner.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Provider ephemeris.Provider
	Logger   *log.Logger

	// TTL overrides the per-report cache TTLs when positive.
	TTL time.Duration

	// Search is the search table for engines created by [Runner.NewEngine].
	// Nil means the built-in table.
	Search timing.SearchConfigs
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If provider is nil, the Kepler provider is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, p ephemeris.Provider, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if p == nil {
		p = ephemeris.Kepler{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Provider: p,
		Logger:   logger,
	}
}

// NewEngine creates a timing engine bound to the runner's provider.
func (r *Runner) NewEngine() (*timing.Engine, error) {
	opts := []timing.Option{timing.WithLogger(r.Logger)}
	if r.Search != nil {
		opts = append(opts, timing.WithSearchConfigs(r.Search))
	}
	return timing.NewEngine(r.Provider, opts...)
}

// Execute runs every stage. engine may be nil, in which case a fresh one
// is created when opts.Timing is set.
func (r *Runner) Execute(ctx context.Context, opts Options, engine *timing.Engine) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	res := &Result{}

	start := time.Now()
	natal, hit, err := r.ChartWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.Chart, res.CacheInfo.ChartHit, res.Stats.ChartTime = natal, hit, time.Since(start)
	if res.ChartHash, err = ChartHash(natal); err != nil {
		return nil, err
	}
	opts.Logger.Info("computed chart",
		"ascendant", natal.Ascendant.Sign,
		"cached", hit,
		"duration", res.Stats.ChartTime)

	start = time.Now()
	if res.Dasha, res.CacheInfo.DashaHit, err = r.DashaWithCacheInfo(ctx, natal, opts); err != nil {
		return nil, err
	}
	res.Stats.DashaTime = time.Since(start)

	start = time.Now()
	if res.Transits, res.CacheInfo.TransitHit, err = r.TransitsWithCacheInfo(ctx, natal, opts, engine); err != nil {
		return nil, err
	}
	res.Stats.TransitTime = time.Since(start)
	opts.Logger.Info("analyzed transits",
		"rating", res.Transits.Rating,
		"cached", res.CacheInfo.TransitHit,
		"duration", res.Stats.TransitTime)

	start = time.Now()
	if res.Calendar, res.CacheInfo.CalendarHit, err = r.CalendarWithCacheInfo(ctx, natal, opts); err != nil {
		return nil, err
	}
	res.Stats.CalendarTime = time.Since(start)

	return res, nil
}

// ChartWithCacheInfo builds the natal chart and reports whether it came
// from the cache.
func (r *Runner) ChartWithCacheInfo(ctx context.Context, opts Options) (*chart.Natal, bool, error) {
	if err := opts.ValidateForChart(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.ChartKey(opts.ChartKeyOpts(r.Provider.Name()))
	return runStage(ctx, r, StageChart, key, r.ttl(cache.TTLChart), opts.Refresh, func() (*chart.Natal, error) {
		return chart.Build(r.Provider, opts.Birth, opts.Latitude, opts.Longitude)
	})
}

// Chart is a convenience wrapper that discards the cache hit info.
func (r *Runner) Chart(ctx context.Context, opts Options) (*chart.Natal, error) {
	n, _, err := r.ChartWithCacheInfo(ctx, opts)
	return n, err
}

// DashaWithCacheInfo computes the dasha report for natal at opts.At.
func (r *Runner) DashaWithCacheInfo(ctx context.Context, natal *chart.Natal, opts Options) (*DashaReport, bool, error) {
	if err := opts.ValidateForReports(); err != nil {
		return nil, false, err
	}
	hash, err := ChartHash(natal)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.DashaKey(hash, cache.DashaKeyOpts{At: opts.At})
	return runStage(ctx, r, StageDasha, key, r.ttl(cache.TTLDasha), opts.Refresh, func() (*DashaReport, error) {
		moon, err := natal.Moon()
		if err != nil {
			return nil, err
		}
		rep := &DashaReport{At: opts.At, Timeline: dasha.Calculate(moon.Longitude, natal.Birth)}
		if cur, ok := rep.Timeline.CurrentAt(opts.At); ok {
			rep.Current = &cur
		}
		return rep, nil
	})
}

// Dasha is a convenience wrapper that discards the cache hit info.
func (r *Runner) Dasha(ctx context.Context, natal *chart.Natal, opts Options) (*DashaReport, error) {
	rep, _, err := r.DashaWithCacheInfo(ctx, natal, opts)
	return rep, err
}

// TransitsWithCacheInfo analyzes the positions at opts.At against natal.
// With opts.Timing, engine supplies stay and conjunction timing; a nil
// engine is replaced by a fresh one.
func (r *Runner) TransitsWithCacheInfo(ctx context.Context, natal *chart.Natal, opts Options, engine *timing.Engine) (*TransitReport, bool, error) {
	if err := opts.ValidateForReports(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	hash, err := ChartHash(natal)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.TransitKey(hash, cache.TransitKeyOpts{At: opts.At, Timing: opts.Timing})
	return runStage(ctx, r, StageTransits, key, r.ttl(cache.TTLTransits), opts.Refresh, func() (*TransitReport, error) {
		positions, err := ephemeris.Positions(r.Provider, opts.At)
		if err != nil {
			return nil, err
		}
		rep := &TransitReport{At: opts.At, Positions: positions}

		if opts.Timing {
			if engine == nil {
				if engine, err = r.NewEngine(); err != nil {
					return nil, err
				}
			}
			rep.Transits = transit.WithTiming(natal, positions, opts.At, engine)
			npos, nstays := engine.CacheStats()
			opts.Logger.Debug("timing caches", "positions", npos, "stays", nstays)
		} else {
			rep.Transits = transit.Analyze(natal, positions)
		}

		rep.Score = transit.DayScore(natal, positions)
		rep.Rating = transit.Rate(rep.Score)
		return rep, nil
	})
}

// Transits is a convenience wrapper that discards the cache hit info.
func (r *Runner) Transits(ctx context.Context, natal *chart.Natal, opts Options, engine *timing.Engine) (*TransitReport, error) {
	rep, _, err := r.TransitsWithCacheInfo(ctx, natal, opts, engine)
	return rep, err
}

// CalendarWithCacheInfo rates every day of opts.Year/opts.Month.
func (r *Runner) CalendarWithCacheInfo(ctx context.Context, natal *chart.Natal, opts Options) (*CalendarReport, bool, error) {
	if err := opts.ValidateForReports(); err != nil {
		return nil, false, err
	}
	hash, err := ChartHash(natal)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.CalendarKey(hash, cache.CalendarKeyOpts{Year: opts.Year, Month: opts.Month})
	return runStage(ctx, r, StageCalendar, key, r.ttl(cache.TTLCalendar), opts.Refresh, func() (*CalendarReport, error) {
		return r.calendar(ctx, natal, opts.Year, time.Month(opts.Month))
	})
}

// Calendar is a convenience wrapper that discards the cache hit info.
func (r *Runner) Calendar(ctx context.Context, natal *chart.Natal, opts Options) (*CalendarReport, error) {
	rep, _, err := r.CalendarWithCacheInfo(ctx, natal, opts)
	return rep, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// ChartHash returns the content hash used to key reports derived from natal.
func ChartHash(natal *chart.Natal) (string, error) {
	if natal == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "natal chart is required")
	}
	data, err := json.Marshal(natal)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode chart")
	}
	return cache.Hash(data), nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// runStage wraps one stage with cache lookup, hooks and cache write-back.
// Cache failures are logged and otherwise ignored.
func runStage[T any](ctx context.Context, r *Runner, stage, key string, ttl time.Duration, refresh bool, compute func() (T, error)) (T, bool, error) {
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	keyType := cache.KeyType(key)

	hooks.OnStageStart(ctx, stage)
	start := time.Now()

	var zero T
	if !refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "stage", stage, "err", err)
		}
		if hit {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				cacheHooks.OnCacheHit(ctx, keyType)
				hooks.OnStageComplete(ctx, stage, time.Since(start), nil)
				return v, true, nil
			}
			r.Logger.Debug("discarding undecodable cache entry", "stage", stage)
		}
		cacheHooks.OnCacheMiss(ctx, keyType)
	}

	v, err := compute()
	hooks.OnStageComplete(ctx, stage, time.Since(start), err)
	if err != nil {
		return zero, false, err
	}

	if data, err := json.Marshal(v); err != nil {
		r.Logger.Warn("cache encode failed", "stage", stage, "err", err)
	} else if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "stage", stage, "err", err)
	} else {
		cacheHooks.OnCacheSet(ctx, keyType, len(data))
	}
	return v, false, nil
}
