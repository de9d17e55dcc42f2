package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, "chart")
	p.OnStageComplete(ctx, "chart", time.Second, nil)

	tm := NoopTimingHooks{}
	tm.OnPositionLookup(true)
	tm.OnPositionEvict()
	tm.OnStayResolved("Sa", false, time.Millisecond)
	tm.OnSearchExhausted("Sa", "forward")
	tm.OnVerificationAnomaly("Me")

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "transits")
	c.OnCacheMiss(ctx, "calendar")
	c.OnCacheSet(ctx, "dasha", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/healthz")
	h.OnResponse(ctx, "GET", "/healthz", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Timing().(NoopTimingHooks); !ok {
		t.Error("Timing() should return NoopTimingHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customTiming := &testTimingHooks{}
	SetTimingHooks(customTiming)
	if Timing() != customTiming {
		t.Error("SetTimingHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Timing().(NoopTimingHooks); !ok {
		t.Error("Reset() should restore NoopTimingHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestSetAll(t *testing.T) {
	Reset()
	defer Reset()

	m := NewPrometheus()
	SetAll(m)
	if Pipeline() != PipelineHooks(m) || Timing() != TimingHooks(m) || Cache() != CacheHooks(m) || HTTP() != HTTPHooks(m) {
		t.Error("SetAll should register the backend for every category")
	}
}

func TestPrometheusCounters(t *testing.T) {
	ctx := context.Background()
	m := NewPrometheus()

	m.OnPositionLookup(true)
	m.OnPositionLookup(true)
	m.OnPositionLookup(false)
	m.OnPositionEvict()
	m.OnStayResolved("Sa", false, time.Millisecond)
	m.OnStayResolved("Sa", true, 0)
	m.OnSearchExhausted("Ju", "forward")
	m.OnVerificationAnomaly("Me")
	m.OnStageComplete(ctx, "transits", time.Millisecond, errors.New("boom"))
	m.OnCacheSet(ctx, "dasha", 512)
	m.OnCacheHit(ctx, "dasha")
	m.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"hits", testutil.ToFloat64(m.PositionLookups.WithLabelValues("hit")), 2},
		{"misses", testutil.ToFloat64(m.PositionLookups.WithLabelValues("miss")), 1},
		{"evictions", testutil.ToFloat64(m.PositionEvicts), 1},
		{"stays searched", testutil.ToFloat64(m.StaysResolved.WithLabelValues("Sa", "search")), 1},
		{"stays cached", testutil.ToFloat64(m.StaysResolved.WithLabelValues("Sa", "cache")), 1},
		{"exhausted", testutil.ToFloat64(m.SearchExhausted.WithLabelValues("Ju", "forward")), 1},
		{"anomalies", testutil.ToFloat64(m.VerifyAnomalies.WithLabelValues("Me")), 1},
		{"stage errors", testutil.ToFloat64(m.StageErrors.WithLabelValues("transits")), 1},
		{"cache bytes", testutil.ToFloat64(m.ReportCacheBytes.WithLabelValues("dasha")), 512},
		{"cache hits", testutil.ToFloat64(m.ReportCache.WithLabelValues("dasha", "hit")), 1},
		{"http", testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/healthz", "200")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestPrometheusHandler(t *testing.T) {
	m := NewPrometheus()
	m.OnPositionEvict()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "jyotish_position_cache_evictions_total 1") {
		t.Error("metrics output missing eviction counter")
	}
}

func TestNewPrometheusTwice(t *testing.T) {
	// Private registries mean independent instances never collide.
	_ = NewPrometheus()
	_ = NewPrometheus()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testTimingHooks struct{ NoopTimingHooks }
