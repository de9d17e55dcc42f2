// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies to the computation packages. Consumers register hooks at
// startup to receive events about pipeline stages, transit timing searches,
// report cache operations and HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [Prometheus] is the bundled backend; it implements every hook interface
// and serves its registry over HTTP.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := observability.NewPrometheus()
//	    observability.SetAll(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnStageStart(ctx, "transits")
//	// ... compute ...
//	observability.Pipeline().OnStageComplete(ctx, "transits", duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the computation pipeline.
type PipelineHooks interface {
	// OnStageStart records the start of a stage ("chart", "dasha", "transits", "calendar").
	OnStageStart(ctx context.Context, stage string)

	// OnStageComplete records the end of a stage.
	OnStageComplete(ctx context.Context, stage string, duration time.Duration, err error)
}

// =============================================================================
// Timing Hooks
// =============================================================================

// TimingHooks receives events from the transit timing engine. The engine is
// synchronous and carries no context, so neither do these hooks.
type TimingHooks interface {
	// OnPositionLookup records a position cache lookup.
	OnPositionLookup(hit bool)

	// OnPositionEvict records a FIFO eviction from the position cache.
	OnPositionEvict()

	// OnStayResolved records a resolved sign stay. cached is true when the
	// timing cache supplied the entry and exit.
	OnStayResolved(body string, cached bool, duration time.Duration)

	// OnSearchExhausted records a boundary search that reached its horizon
	// without finding a crossing. direction is "backward" or "forward".
	OnSearchExhausted(body, direction string)

	// OnVerificationAnomaly records a retrograde verification pass that saw
	// the body leave its sign without finding the re-entry.
	OnVerificationAnomaly(body string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from report cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, time.Duration, error) {}

// NoopTimingHooks is a no-op implementation of TimingHooks.
type NoopTimingHooks struct{}

func (NoopTimingHooks) OnPositionLookup(bool)                      {}
func (NoopTimingHooks) OnPositionEvict()                           {}
func (NoopTimingHooks) OnStayResolved(string, bool, time.Duration) {}
func (NoopTimingHooks) OnSearchExhausted(string, string)           {}
func (NoopTimingHooks) OnVerificationAnomaly(string)               {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	timingHooks   TimingHooks   = NoopTimingHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetTimingHooks registers custom timing engine hooks.
func SetTimingHooks(h TimingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		timingHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// AllHooks is implemented by backends that handle every event category.
type AllHooks interface {
	PipelineHooks
	TimingHooks
	CacheHooks
	HTTPHooks
}

// SetAll registers h for every hook category.
func SetAll(h AllHooks) {
	SetPipelineHooks(h)
	SetTimingHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Timing returns the registered timing hooks.
func Timing() TimingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return timingHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	timingHooks = NoopTimingHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
