package errors

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// Supported date range for chart and transit queries. The reference
// ephemeris degrades quickly outside a few centuries around J2000.
var (
	MinDate = time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)
)

// ValidateLatitude checks a geographic latitude in degrees.
// The poles are rejected because the ascendant is undefined there.
func ValidateLatitude(lat float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return New(ErrCodeInvalidLatitude, "latitude must be a finite number")
	}
	if lat <= -90 || lat >= 90 {
		return New(ErrCodeInvalidLatitude, "latitude %.4f out of range (-90, 90)", lat)
	}
	return nil
}

// ValidateLongitude checks a geographic (east-positive) longitude in degrees.
func ValidateLongitude(lon float64) error {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return New(ErrCodeInvalidLongitude, "longitude must be a finite number")
	}
	if lon < -180 || lon > 180 {
		return New(ErrCodeInvalidLongitude, "longitude %.4f out of range [-180, 180]", lon)
	}
	return nil
}

// ValidateEclipticLongitude checks that an ecliptic longitude is usable.
// Any finite value is accepted; callers normalise it into [0, 360).
func ValidateEclipticLongitude(lon float64) error {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return New(ErrCodeInvalidLongitude, "ecliptic longitude must be a finite number")
	}
	return nil
}

// ValidateDate checks that t lies inside [MinDate, MaxDate).
func ValidateDate(t time.Time) error {
	if t.IsZero() {
		return New(ErrCodeInvalidDate, "date is required")
	}
	if t.Before(MinDate) || !t.Before(MaxDate) {
		return New(ErrCodeInvalidDate, "date %s outside supported range %d-%d",
			t.UTC().Format(time.RFC3339), MinDate.Year(), MaxDate.Year())
	}
	return nil
}

// ValidateMonth checks a calendar year and month pair.
func ValidateMonth(year, month int) error {
	if month < 1 || month > 12 {
		return New(ErrCodeInvalidDate, "month %d out of range 1-12", month)
	}
	return ValidateDate(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
}

// ValidatePath validates a user-supplied file path (ephemeris tables, cache dirs).
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
