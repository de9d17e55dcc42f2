package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants, or
// several ephemeris configurations, can share one backend.
//
// Example usage:
//
//	// API sessions share one Redis but never each other's reports
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "session:"+id+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ChartKey generates a prefixed natal chart key.
func (k *ScopedKeyer) ChartKey(opts ChartKeyOpts) string {
	return k.prefix + k.inner.ChartKey(opts)
}

// DashaKey generates a prefixed dasha report key.
func (k *ScopedKeyer) DashaKey(chartHash string, opts DashaKeyOpts) string {
	return k.prefix + k.inner.DashaKey(chartHash, opts)
}

// TransitKey generates a prefixed transit report key.
func (k *ScopedKeyer) TransitKey(chartHash string, opts TransitKeyOpts) string {
	return k.prefix + k.inner.TransitKey(chartHash, opts)
}

// CalendarKey generates a prefixed calendar key.
func (k *ScopedKeyer) CalendarKey(chartHash string, opts CalendarKeyOpts) string {
	return k.prefix + k.inner.CalendarKey(chartHash, opts)
}
