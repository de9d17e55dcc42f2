package timing

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/ephemeris"
	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
	jerrors "github.com/matzehuels/jyotish/pkg/errors"
	"github.com/matzehuels/jyotish/pkg/observability"
)

var ref = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// motion gives a sidereal longitude as a function of days from ref.
type motion func(d float64) float64

// synthetic builds a provider whose sidereal longitudes follow the given
// motions exactly.
func synthetic(bodies map[graha.Body]motion) ephemeris.Provider {
	return ephemeris.Func(func(t time.Time) (map[graha.Body]float64, error) {
		d := t.Sub(ref).Hours() / 24
		out := make(map[graha.Body]float64, len(bodies))
		for b, m := range bodies {
			out[b] = sidereal.ToTropical(m(d), t)
		}
		return out, nil
	})
}

func linear(start, perDay float64) motion {
	return func(d float64) float64 { return start + perDay*d }
}

// marsDip moves forward through Gemini with a brief retrograde dip back
// into Taurus around day -42.
func marsDip(d float64) float64 {
	v := 70 + d*10/98
	if x := math.Abs(d + 42); x < 2 {
		v -= 11.4 * (1 - x/2)
	}
	return v
}

// marsReturn leaves Gemini at day 50, retrogrades back in at about day 60
// and finally leaves at day 105.
func marsReturn(d float64) float64 {
	switch {
	case d <= 55:
		return 70 + 0.4*d
	case d <= 75:
		return 92 - 0.4*(d-55)
	default:
		return 84 + 0.2*(d-75)
	}
}

func newEngine(t *testing.T, p ephemeris.Provider, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(p, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func withoutGrace(body graha.Body) SearchConfigs {
	cs := DefaultSearchConfigs()
	c := cs[body]
	c.GraceDays = 0
	cs[body] = c
	return cs
}

func assertDay(t *testing.T, name string, got time.Time, wantDays, tol float64) {
	t.Helper()
	d := got.Sub(ref).Hours() / 24
	if math.Abs(d-wantDays) > tol {
		t.Errorf("%s = %s (day %.2f), want day %.2f ± %.1f", name, got.Format(time.RFC3339), d, wantDays, tol)
	}
}

func TestFindContinuousSignStay(t *testing.T) {
	tests := []struct {
		name      string
		body      graha.Body
		motion    motion
		sign      sidereal.Sign
		configs   SearchConfigs
		wantEntry float64
		wantExit  float64
	}{
		{
			name:      "saturn direct",
			body:      graha.Saturn,
			motion:    linear(95, 0.0335),
			sign:      sidereal.Cancer,
			wantEntry: -149.25,
			wantExit:  746.27,
		},
		{
			name:      "mars dip absorbed",
			body:      graha.Mars,
			motion:    marsDip,
			sign:      sidereal.Gemini,
			wantEntry: -41,
			wantExit:  196,
		},
		{
			name:      "mars dip without verification",
			body:      graha.Mars,
			motion:    marsDip,
			sign:      sidereal.Gemini,
			configs:   withoutGrace(graha.Mars),
			wantEntry: -98,
			wantExit:  196,
		},
		{
			name:      "mars retrograde return",
			body:      graha.Mars,
			motion:    marsReturn,
			sign:      sidereal.Gemini,
			wantEntry: -25,
			wantExit:  105,
		},
		{
			name:      "mars return without verification",
			body:      graha.Mars,
			motion:    marsReturn,
			sign:      sidereal.Gemini,
			configs:   withoutGrace(graha.Mars),
			wantEntry: -25,
			wantExit:  50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.configs != nil {
				opts = append(opts, WithSearchConfigs(tt.configs))
			}
			e := newEngine(t, synthetic(map[graha.Body]motion{tt.body: tt.motion}), opts...)

			st, err := e.FindContinuousSignStay(tt.body, tt.sign, ref)
			if err != nil {
				t.Fatalf("FindContinuousSignStay: %v", err)
			}
			if st.Body != tt.body || st.Sign != tt.sign {
				t.Errorf("stay = %v in %v, want %v in %v", st.Body, st.Sign, tt.body, tt.sign)
			}
			assertDay(t, "entry", st.Entry, tt.wantEntry, 1.5)
			assertDay(t, "exit", st.Exit, tt.wantExit, 1.5)
		})
	}
}

func TestFindContinuousSignStayIdempotent(t *testing.T) {
	p := synthetic(map[graha.Body]motion{graha.Saturn: linear(95, 0.0335)})

	first, err := newEngine(t, p).FindContinuousSignStay(graha.Saturn, sidereal.Cancer, ref)
	if err != nil {
		t.Fatal(err)
	}
	later := ref.Add(100 * day)
	second, err := newEngine(t, p).FindContinuousSignStay(graha.Saturn, sidereal.Cancer, later)
	if err != nil {
		t.Fatal(err)
	}

	if d := math.Abs(float64(daysBetween(first.Entry, second.Entry))); d > 2 {
		t.Errorf("entry moved by %v days between reference dates", d)
	}
	if d := math.Abs(float64(daysBetween(first.Exit, second.Exit))); d > 2 {
		t.Errorf("exit moved by %v days between reference dates", d)
	}
}

func TestFindContinuousSignStayExhausted(t *testing.T) {
	rec := &recordingHooks{}
	cs := DefaultSearchConfigs()
	cs[graha.Saturn] = SearchConfig{StepDays: 7, MaxDays: 70, GraceDays: 20}
	e := newEngine(t, synthetic(map[graha.Body]motion{graha.Saturn: linear(100, 0)}),
		WithSearchConfigs(cs), WithHooks(rec))

	st, err := e.FindContinuousSignStay(graha.Saturn, sidereal.Cancer, ref)
	if err != nil {
		t.Fatal(err)
	}
	if !st.Entry.Equal(ref.Add(-70 * day)) {
		t.Errorf("entry = %v, want horizon fallback", st.Entry)
	}
	if !st.Exit.Equal(ref.Add(70 * day)) {
		t.Errorf("exit = %v, want horizon fallback", st.Exit)
	}
	if rec.exhausted != 2 {
		t.Errorf("exhausted hooks = %d, want 2", rec.exhausted)
	}
}

func TestFindContinuousSignStayUnknownBody(t *testing.T) {
	cs := DefaultSearchConfigs()
	e := newEngine(t, synthetic(nil), WithSearchConfigs(cs))
	delete(e.configs, graha.Venus)

	_, err := e.FindContinuousSignStay(graha.Venus, sidereal.Aries, ref)
	if !jerrors.Is(err, jerrors.ErrCodeInvalidBody) {
		t.Errorf("err = %v, want %s", err, jerrors.ErrCodeInvalidBody)
	}
}

func TestFindBoundaryCrossing(t *testing.T) {
	e := newEngine(t, synthetic(map[graha.Body]motion{graha.Sun: linear(15, 1)}))
	cfg, _ := e.Config(graha.Sun)

	entry, ok := e.FindBoundaryCrossing(graha.Sun, sidereal.Aries, ref, Backward, cfg)
	if !ok {
		t.Fatal("backward crossing not found")
	}
	assertDay(t, "entry", entry, -15, 1)
	if e.signAt(graha.Sun, entry) != sidereal.Aries {
		t.Error("backward result should lie inside the sign")
	}

	exit, ok := e.FindBoundaryCrossing(graha.Sun, sidereal.Aries, ref, Forward, cfg)
	if !ok {
		t.Fatal("forward crossing not found")
	}
	assertDay(t, "exit", exit, 15, 1)
	if e.signAt(graha.Sun, exit) == sidereal.Aries {
		t.Error("forward result should lie outside the sign")
	}
}

func TestTimings(t *testing.T) {
	rec := &recordingHooks{}
	p := synthetic(map[graha.Body]motion{
		graha.Moon:   linear(10, 13),
		graha.Saturn: linear(95, 0.0335),
	})
	e := newEngine(t, p, WithHooks(rec))

	positions, err := ephemeris.Positions(p, ref)
	if err != nil {
		t.Fatal(err)
	}
	got := e.Timings(positions, ref)

	if _, ok := got[graha.Moon]; ok {
		t.Error("Moon should be skipped")
	}
	sa, ok := got[graha.Saturn]
	if !ok {
		t.Fatal("missing Saturn timing")
	}
	if sa.Sign != sidereal.Cancer || sa.Cached {
		t.Errorf("Saturn = %+v", sa)
	}
	if sa.ProgressPct <= 0 || sa.ProgressPct >= 100 {
		t.Errorf("progress = %v, want strictly between 0 and 100", sa.ProgressPct)
	}
	if sa.TotalDays != sa.ElapsedDays+sa.DaysRemaining {
		t.Errorf("total %d != elapsed %d + remaining %d", sa.TotalDays, sa.ElapsedDays, sa.DaysRemaining)
	}
	if _, ok := got[graha.Rahu]; !ok {
		t.Error("missing Rahu timing")
	}

	again := e.Timings(positions, ref.Add(day))
	if !again[graha.Saturn].Cached {
		t.Error("second lookup should come from the timing cache")
	}
	if !again[graha.Saturn].Entry.Equal(sa.Entry) {
		t.Error("cached entry differs")
	}
	if rec.cached == 0 {
		t.Error("no cached resolutions recorded")
	}

	e.Clear()
	if n, m := e.CacheStats(); n != 0 || m != 0 {
		t.Errorf("CacheStats after Clear = %d, %d", n, m)
	}
}

func TestSummarize(t *testing.T) {
	entry := ref.Add(-10 * day)
	tests := []struct {
		name      string
		exit      time.Time
		at        time.Time
		pct       float64
		remaining int
	}{
		{"midway", ref.Add(10 * day), ref, 50, 10},
		{"before entry", ref.Add(10 * day), entry.Add(-5 * day), 0, 25},
		{"after exit", ref.Add(10 * day), ref.Add(20 * day), 100, 0},
		{"zero length", entry, entry, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summarize(graha.Mars, sidereal.Leo, entry, tt.exit, tt.at)
			if s.ProgressPct != tt.pct {
				t.Errorf("progress = %v, want %v", s.ProgressPct, tt.pct)
			}
			if s.DaysRemaining != tt.remaining {
				t.Errorf("remaining = %d, want %d", s.DaysRemaining, tt.remaining)
			}
		})
	}
}

func TestConjunction(t *testing.T) {
	tests := []struct {
		name      string
		body      graha.Body
		motion    motion // nil leaves the body out of the ephemeris
		natal     float64
		applying  bool
		noExact   bool
		wantExact float64
		tol       float64
	}{
		{"applying", graha.Jupiter, linear(97, 0.083), 100, true, false, 36.14, 1.5},
		{"separating", graha.Jupiter, linear(103, 0.083), 100, false, false, -36.14, 1.5},
		// Sun closes 1°/day on a point 100° ahead: still closing when the
		// 40-day horizon ends, so the last sample is the best estimate.
		{"closing at horizon", graha.Sun, linear(60, 1.0), 160, true, false, 40, 0.5},
		{"stationary on natal point", graha.Saturn, linear(100, 0), 100, false, false, 0, 1},
		{"missing body", graha.Venus, nil, 10, false, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodies := map[graha.Body]motion{}
			if tt.motion != nil {
				bodies[tt.body] = tt.motion
			}
			e := newEngine(t, synthetic(bodies))
			c := e.Conjunction(tt.body, tt.natal, ref)
			if c.IsApplying != tt.applying {
				t.Errorf("IsApplying = %v, want %v", c.IsApplying, tt.applying)
			}
			if tt.noExact {
				if c.Exact != nil {
					t.Errorf("Exact = %v, want nil", *c.Exact)
				}
				return
			}
			if c.Exact == nil {
				t.Fatal("Exact = nil")
			}
			assertDay(t, "exact", *c.Exact, tt.wantExact, tt.tol)
		})
	}
}

func TestNewEngineValidation(t *testing.T) {
	missing := DefaultSearchConfigs()
	delete(missing, graha.Mercury)

	zeroStep := DefaultSearchConfigs()
	zeroStep[graha.Mars] = SearchConfig{StepDays: 0, MaxDays: 10}

	tests := []struct {
		name string
		p    ephemeris.Provider
		opts []Option
	}{
		{"nil provider", nil, nil},
		{"missing body", synthetic(nil), []Option{WithSearchConfigs(missing)}},
		{"zero step", synthetic(nil), []Option{WithSearchConfigs(zeroStep)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.p, tt.opts...)
			if !jerrors.Is(err, jerrors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want %s", err, jerrors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestProviderErrorTreatedAsAbsent(t *testing.T) {
	p := ephemeris.Func(func(time.Time) (map[graha.Body]float64, error) {
		return nil, errors.New("offline")
	})
	e := newEngine(t, p)
	if s := e.signAt(graha.Mars, ref); s != -1 {
		t.Errorf("signAt = %v, want -1", s)
	}
	if _, ok := e.longitudeAt(graha.Mars, ref); ok {
		t.Error("longitudeAt should report absence")
	}
}

func TestEngineConcurrentUse(t *testing.T) {
	e := newEngine(t, synthetic(map[graha.Body]motion{graha.Saturn: linear(95, 0.0335)}))
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Stay(graha.Saturn, sidereal.Cancer, ref.Add(time.Duration(i)*day))
		}()
	}
	wg.Wait()
	if _, stays := e.CacheStats(); stays != 1 {
		t.Errorf("stays cached = %d, want 1", stays)
	}
}

type recordingHooks struct {
	observability.NoopTimingHooks
	cached    int
	exhausted int
	anomalies int
}

func (r *recordingHooks) OnStayResolved(_ string, cached bool, _ time.Duration) {
	if cached {
		r.cached++
	}
}

func (r *recordingHooks) OnSearchExhausted(string, string) { r.exhausted++ }

func (r *recordingHooks) OnVerificationAnomaly(string) { r.anomalies++ }
