package transit

import (
	"testing"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/chart"
	"github.com/matzehuels/jyotish/pkg/core/ephemeris"
	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/houses"
	"github.com/matzehuels/jyotish/pkg/core/sidereal"
	"github.com/matzehuels/jyotish/pkg/core/timing"
)

func pos(b graha.Body, lon float64) sidereal.Position {
	return sidereal.FromSidereal(b, lon, lon)
}

// ariesNatal rises in Aries with the Sun in the 1st, Moon in the 4th and
// Mars in the 7th.
func ariesNatal() *chart.Natal {
	return &chart.Natal{
		Ascendant: houses.Lagna{Sign: sidereal.Aries},
		Planets: []sidereal.Position{
			pos(graha.Sun, 15),
			pos(graha.Moon, 100),
			pos(graha.Mars, 200),
		},
	}
}

func TestAnalyze(t *testing.T) {
	got := Analyze(ariesNatal(), []sidereal.Position{
		pos(graha.Moon, 190),
		pos(graha.Mars, 20),
		pos(graha.Jupiter, 104),
		pos(graha.Saturn, 75),
	})

	want := []struct {
		body    graha.Body
		house   int
		quality Quality
		desc    string
	}{
		{graha.Saturn, 3, Positive, "Transiting Gemini"},
		{graha.Jupiter, 4, Neutral, "Transiting Cancer • Conjunct natal Moon"},
		{graha.Mars, 1, Neutral, "Transiting Aries • Conjunct natal Sun • 4th asp natal Moon, 7th asp natal Mars"},
		{graha.Moon, 7, Neutral, "Transiting Libra • 7th asp natal Sun"},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		tr := got[i]
		if tr.Body != w.body {
			t.Errorf("[%d] body = %v, want %v", i, tr.Body, w.body)
			continue
		}
		if tr.House != w.house {
			t.Errorf("%v house = %d, want %d", w.body, tr.House, w.house)
		}
		if tr.Quality != w.quality {
			t.Errorf("%v quality = %s, want %s", w.body, tr.Quality, w.quality)
		}
		if tr.Description != w.desc {
			t.Errorf("%v description = %q, want %q", w.body, tr.Description, w.desc)
		}
	}

	ju := got[1]
	if len(ju.Conjunctions) != 1 || ju.Conjunctions[0].Natal != graha.Moon || ju.Conjunctions[0].Orb != 4 {
		t.Errorf("Jupiter conjunctions = %+v", ju.Conjunctions)
	}
	ma := got[2]
	if len(ma.Aspects) != 2 || ma.Aspects[0].TargetHouse != 4 || ma.Aspects[1].Distance != 7 {
		t.Errorf("Mars aspects = %+v", ma.Aspects)
	}
	if got[0].Conjunctions == nil || got[0].Aspects == nil {
		t.Error("empty hit lists should be non-nil for stable JSON")
	}
}

func TestAspectedHouse(t *testing.T) {
	tests := []struct {
		house, distance, want int
	}{
		{1, 7, 7},
		{1, 4, 4},
		{1, 8, 8},
		{5, 9, 1},
		{7, 7, 1},
		{10, 4, 1},
		{12, 3, 2},
		{12, 10, 9},
	}
	for _, tt := range tests {
		if got := AspectedHouse(tt.house, tt.distance); got != tt.want {
			t.Errorf("AspectedHouse(%d, %d) = %d, want %d", tt.house, tt.distance, got, tt.want)
		}
	}
}

func TestConjunctionOrbRounding(t *testing.T) {
	natal := ariesNatal()
	got := Analyze(natal, []sidereal.Position{pos(graha.Venus, 107.96)})
	if len(got[0].Conjunctions) != 1 || got[0].Conjunctions[0].Orb != 8 {
		t.Errorf("conjunctions = %+v, want one at orb 8.0", got[0].Conjunctions)
	}
	got = Analyze(natal, []sidereal.Position{pos(graha.Venus, 108.1)})
	if len(got[0].Conjunctions) != 0 {
		t.Errorf("8.1° should be outside orb, got %+v", got[0].Conjunctions)
	}
}

func TestAssess(t *testing.T) {
	tests := []struct {
		body  graha.Body
		house int
		want  Quality
	}{
		{graha.Saturn, 3, Positive},
		{graha.Mars, 6, Positive},
		{graha.Rahu, 11, Positive},
		{graha.Jupiter, 11, Positive},
		{graha.Venus, 5, Positive},
		{graha.Mercury, 1, Positive},
		{graha.Saturn, 8, Negative},
		{graha.Ketu, 12, Negative},
		{graha.Jupiter, 8, Neutral},
		{graha.Saturn, 1, Neutral},
		{graha.Sun, 8, Neutral},
		{graha.Sun, 11, Neutral},
	}
	for _, tt := range tests {
		if got := Assess(tt.body, tt.house); got != tt.want {
			t.Errorf("Assess(%v, %d) = %s, want %s", tt.body, tt.house, got, tt.want)
		}
	}
}

func TestOrdinal(t *testing.T) {
	for n, want := range map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 7: "7th", 10: "10th", 11: "11th", 12: "12th", 13: "13th", 21: "21st"} {
		if got := ordinal(n); got != want {
			t.Errorf("ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestDayQuality(t *testing.T) {
	tests := []struct {
		name      string
		positions []sidereal.Position
		score     float64
		want      DayRating
	}{
		{
			name: "mixed",
			positions: []sidereal.Position{
				pos(graha.Saturn, 75), pos(graha.Jupiter, 104), pos(graha.Mars, 20), pos(graha.Moon, 190),
			},
			score: 2.5,
			want:  Mixed,
		},
		{
			name:      "challenging",
			positions: []sidereal.Position{pos(graha.Saturn, 215), pos(graha.Ketu, 335)},
			score:     -4.25,
			want:      Challenging,
		},
		{
			name:      "good",
			positions: []sidereal.Position{pos(graha.Jupiter, 130), pos(graha.Venus, 280)},
			score:     3,
			want:      Good,
		},
		{
			name:      "sun never subtracts",
			positions: []sidereal.Position{pos(graha.Sun, 200)},
			score:     0,
			want:      Mixed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			natal := ariesNatal()
			if got := DayScore(natal, tt.positions); got != tt.score {
				t.Errorf("DayScore = %v, want %v", got, tt.score)
			}
			if got := DayQuality(natal, tt.positions); got != tt.want {
				t.Errorf("DayQuality = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRateThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  DayRating
	}{
		{3, Good}, {2.75, Mixed}, {0, Mixed}, {-2.75, Mixed}, {-3, Challenging},
	}
	for _, tt := range tests {
		if got := Rate(tt.score); got != tt.want {
			t.Errorf("Rate(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestWithTiming(t *testing.T) {
	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	p := ephemeris.Func(func(at time.Time) (map[graha.Body]float64, error) {
		d := at.Sub(ref).Hours() / 24
		return map[graha.Body]float64{
			graha.Moon:    sidereal.ToTropical(40+13*d, at),
			graha.Jupiter: sidereal.ToTropical(97+0.083*d, at),
		}, nil
	})
	engine, err := timing.NewEngine(p)
	if err != nil {
		t.Fatal(err)
	}
	positions, err := ephemeris.Positions(p, ref)
	if err != nil {
		t.Fatal(err)
	}

	transits := WithTiming(ariesNatal(), positions, ref, engine)
	var ju, mo *Transit
	for i := range transits {
		switch transits[i].Body {
		case graha.Jupiter:
			ju = &transits[i]
		case graha.Moon:
			mo = &transits[i]
		}
	}
	if ju == nil || mo == nil {
		t.Fatal("missing Jupiter or Moon transit")
	}
	if mo.Timing != nil {
		t.Error("Moon should carry no sign timing")
	}
	if ju.Timing == nil || ju.Timing.Sign != sidereal.Cancer {
		t.Fatalf("Jupiter timing = %+v", ju.Timing)
	}
	if len(ju.Conjunctions) != 1 {
		t.Fatalf("Jupiter conjunctions = %+v", ju.Conjunctions)
	}
	ct := ju.Conjunctions[0].Timing
	if ct == nil || !ct.IsApplying || ct.Exact == nil {
		t.Fatalf("conjunction timing = %+v", ct)
	}
	if d := ct.Exact.Sub(ref).Hours() / 24; d < 34 || d > 39 {
		t.Errorf("exact conjunction at day %.1f, want about 36", d)
	}
}
