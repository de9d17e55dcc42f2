package sidereal

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/jyotish/pkg/core/graha"
)

const eps = 1e-9

func TestAyanamsha(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want float64
	}{
		{"epoch", J2000, 24.0417},
		{"one year later", J2000.Add(time.Duration(365.25 * 24 * float64(time.Hour))), 24.0417 + 50.2888/3600},
		{"one year earlier", J2000.Add(-time.Duration(365.25 * 24 * float64(time.Hour))), 24.0417 - 50.2888/3600},
		{"century later", J2000.AddDate(0, 0, 36525), 24.0417 + 100*50.2888/3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ayanamsha(tt.at); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ayanamsha() = %.12f, want %.12f", got, tt.want)
			}
		})
	}
}

func TestAyanamshaMonotonic(t *testing.T) {
	prev := Ayanamsha(time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC))
	for y := 1901; y <= 2100; y++ {
		cur := Ayanamsha(time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC))
		if cur <= prev {
			t.Fatalf("ayanamsha not increasing at %d: %f <= %f", y, cur, prev)
		}
		prev = cur
	}
}

func TestToSidereal(t *testing.T) {
	tests := []struct {
		name     string
		tropical float64
		want     float64
	}{
		{"plain", 100, 100 - 24.0417},
		{"wraps below zero", 10, 360 + 10 - 24.0417},
		{"exactly ayanamsha", 24.0417, 0},
		{"over 360 input", 460, 100 - 24.0417},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToSidereal(tt.tropical, J2000)
			if math.Abs(got-tt.want) > eps {
				t.Errorf("ToSidereal(%v) = %v, want %v", tt.tropical, got, tt.want)
			}
			if got < 0 || got >= 360 {
				t.Errorf("ToSidereal(%v) = %v outside [0, 360)", tt.tropical, got)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC)
	for lon := 0.0; lon < 360; lon += 7.3 {
		back := ToTropical(ToSidereal(lon, at), at)
		if AngularDistance(back, lon) > 1e-9 {
			t.Errorf("round trip %v -> %v", lon, back)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{360, 0},
		{-30, 330},
		{725, 5},
		{-1e-15, 0},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); math.Abs(got-tt.want) > eps {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAngularDistance(t *testing.T) {
	tests := []struct{ a, b, want float64 }{
		{10, 20, 10},
		{350, 10, 20},
		{10, 350, 20},
		{0, 180, 180},
		{90, 90, 0},
		{-10, 10, 20},
	}
	for _, tt := range tests {
		if got := AngularDistance(tt.a, tt.b); math.Abs(got-tt.want) > eps {
			t.Errorf("AngularDistance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestToSignInfo(t *testing.T) {
	tests := []struct {
		name string
		lon  float64
		want SignInfo
	}{
		{"aries start", 0, SignInfo{Aries, 0, 0}},
		{"taurus mid", 45.5, SignInfo{Taurus, 15, 30}},
		{"minute rounds down", 45.0 + 10.0/3600, SignInfo{Taurus, 15, 0}},
		{"minute carries into degree", 45.0 + 59.7/60, SignInfo{Taurus, 16, 0}},
		{"clamped at sign edge", 29.9999, SignInfo{Aries, 29, 59}},
		{"pisces end", 359.9999, SignInfo{Pisces, 29, 59}},
		{"negative input", -10, SignInfo{Pisces, 20, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToSignInfo(tt.lon)
			if got != tt.want {
				t.Errorf("ToSignInfo(%v) = %+v, want %+v", tt.lon, got, tt.want)
			}
		})
	}
}

func TestSignIndexMatchesFloor(t *testing.T) {
	for lon := 0.0; lon < 360; lon += 0.37 {
		si := ToSignInfo(lon)
		if int(si.Sign) != int(math.Floor(lon/30)) {
			t.Fatalf("lon %v: sign %d, want %d", lon, si.Sign, int(math.Floor(lon/30)))
		}
		if si.Degree < 0 || si.Degree > 29 || si.Minute < 0 || si.Minute > 59 {
			t.Fatalf("lon %v: out of range %+v", lon, si)
		}
		if SignOf(lon) != si.Sign {
			t.Fatalf("SignOf(%v) = %v, want %v", lon, SignOf(lon), si.Sign)
		}
	}
}

func TestToNakshatraInfo(t *testing.T) {
	tests := []struct {
		name string
		lon  float64
		nak  Nakshatra
		pada int
	}{
		{"ashwini start", 0, 0, 1},
		{"ashwini pada 2", 4, 0, 2},
		{"rohini", 45, 3, 2},
		{"rohini end", 53, 3, 4},
		{"revati", 359, 26, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToNakshatraInfo(tt.lon)
			if got.Nakshatra != tt.nak || got.Pada != tt.pada {
				t.Errorf("ToNakshatraInfo(%v) = %+v, want {%v %d}", tt.lon, got, tt.nak, tt.pada)
			}
		})
	}
}

func TestNakshatraFraction(t *testing.T) {
	n, f := NakshatraFraction(50)
	if n != 3 {
		t.Errorf("nakshatra = %v, want Rohini", n)
	}
	if math.Abs(f-0.75) > 1e-9 {
		t.Errorf("fraction = %v, want 0.75", f)
	}
}

func TestNewPosition(t *testing.T) {
	p := NewPosition(graha.Saturn, 24.0417+95, J2000)
	if p.Sign != Cancer || p.Degree != 5 || p.Minute != 0 {
		t.Errorf("position = %+v, want Cancer 5°00′", p)
	}
	if math.Abs(p.Longitude-95) > eps {
		t.Errorf("Longitude = %v, want 95", p.Longitude)
	}
	if p.DMS() != "5°00′" {
		t.Errorf("DMS() = %q", p.DMS())
	}
}

func TestGroupBySign(t *testing.T) {
	ps := []Position{
		FromSidereal(graha.Sun, 10, 0),
		FromSidereal(graha.Moon, 200, 0),
		FromSidereal(graha.Mars, 15, 0),
	}
	g := GroupBySign(ps)
	if len(g) != 2 {
		t.Fatalf("len = %d, want 2", len(g))
	}
	if got := g[Aries]; len(got) != 2 || got[0] != graha.Sun || got[1] != graha.Mars {
		t.Errorf("Aries = %v", got)
	}
	if _, ok := Find(ps, graha.Venus); ok {
		t.Error("Find(Venus) should be absent")
	}
}

func TestSignText(t *testing.T) {
	var s Sign
	if err := s.UnmarshalText([]byte("scorpio")); err != nil || s != Scorpio {
		t.Errorf("UnmarshalText = %v, %v", s, err)
	}
	if _, err := ParseSign("Ophiuchus"); err == nil {
		t.Error("expected error for unknown sign")
	}
	if Sign(12).Valid() {
		t.Error("Sign(12) should be invalid")
	}
}
