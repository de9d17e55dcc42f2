// Package cache provides byte-level caching for computed reports.
//
// Natal charts, dasha timelines, transit reports and month calendars are
// pure functions of their inputs, so the pipeline stores their JSON
// encodings under content-derived keys. Three backends ship here:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per key, for the CLI
//   - [RedisCache]: shared cache for API deployments
//
// The per-engine position and sign-stay caches of the timing engine are a
// separate, in-process concern and live in package timing.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per report type.
const (
	// TTLChart applies to natal charts, which never change for fixed inputs.
	TTLChart = 30 * 24 * time.Hour

	// TTLDasha applies to dasha timelines.
	TTLDasha = 30 * 24 * time.Hour

	// TTLTransits applies to transit reports for a given instant.
	TTLTransits = 7 * 24 * time.Hour

	// TTLCalendar applies to month calendars.
	TTLCalendar = 7 * 24 * time.Hour
)

// Key prefixes, also used as the key type label for cache metrics.
const (
	KeyTypeChart    = "chart"
	KeyTypeDasha    = "dasha"
	KeyTypeTransits = "transits"
	KeyTypeCalendar = "calendar"
)

// ChartKeyOpts identifies a natal chart.
type ChartKeyOpts struct {
	Birth     time.Time `json:"birth"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Provider  string    `json:"provider"`
}

// DashaKeyOpts identifies a dasha report.
type DashaKeyOpts struct {
	At time.Time `json:"at"`
}

// TransitKeyOpts identifies a transit report.
type TransitKeyOpts struct {
	At     time.Time `json:"at"`
	Timing bool      `json:"timing"`
}

// CalendarKeyOpts identifies a month calendar.
type CalendarKeyOpts struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Keyer derives cache keys. Reports other than the chart are keyed by the
// chart's content hash so that identical births share entries.
type Keyer interface {
	ChartKey(opts ChartKeyOpts) string
	DashaKey(chartHash string, opts DashaKeyOpts) string
	TransitKey(chartHash string, opts TransitKeyOpts) string
	CalendarKey(chartHash string, opts CalendarKeyOpts) string
}

// DefaultKeyer produces keys of the form "<type>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ChartKey generates a key for a natal chart. Birth instants are
// normalized to UTC so equal instants in different zones share a key.
func (DefaultKeyer) ChartKey(opts ChartKeyOpts) string {
	opts.Birth = opts.Birth.UTC()
	return hashKey(KeyTypeChart, opts)
}

// DashaKey generates a key for a dasha report.
func (DefaultKeyer) DashaKey(chartHash string, opts DashaKeyOpts) string {
	opts.At = opts.At.UTC()
	return hashKey(KeyTypeDasha, chartHash, opts)
}

// TransitKey generates a key for a transit report.
func (DefaultKeyer) TransitKey(chartHash string, opts TransitKeyOpts) string {
	opts.At = opts.At.UTC()
	return hashKey(KeyTypeTransits, chartHash, opts)
}

// CalendarKey generates a key for a month calendar.
func (DefaultKeyer) CalendarKey(chartHash string, opts CalendarKeyOpts) string {
	return hashKey(KeyTypeCalendar, chartHash, opts)
}

// KeyType returns the report type of a key built by a [Keyer], ignoring
// any scope prefix: "tenant:42:dasha:<hash>" yields "dasha".
func KeyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return key
	}
	head := key[:i]
	return head[strings.LastIndexByte(head, ':')+1:]
}

// Hash returns the hex SHA-256 of data. The pipeline uses it as the
// content hash of an encoded chart.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "<keyType>:<sha256 of the JSON-encoded parts>".
func hashKey(keyType string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return keyType + ":" + Hash(data)
}
