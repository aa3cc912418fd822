// Package timeutil parses and formats the ISO-8601 timestamps used on the
// wire and provides minute arithmetic over half-open intervals.
package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultZone is used when neither the request nor the config names a zone.
const DefaultZone = "America/Los_Angeles"

var (
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvertedRange    = errors.New("start is after end")
)

var offsetLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// Layouts without an offset are localised to the caller's zone.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse reads an ISO-8601 timestamp. Strings without an explicit offset are
// interpreted in loc (UTC when loc is nil).
func Parse(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty string", ErrInvalidTimestamp)
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// Format renders t as RFC3339 with an explicit offset.
func Format(t time.Time) string {
	return t.Format(time.RFC3339)
}

// FormatPtr renders t, or "" when t is nil.
func FormatPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

// DurationMinutes returns the whole minutes between start and end, truncated.
func DurationMinutes(start, end time.Time) (int, error) {
	if start.After(end) {
		return 0, fmt.Errorf("%w: %s > %s", ErrInvertedRange, Format(start), Format(end))
	}
	return int(end.Sub(start) / time.Minute), nil
}

// AddMinutes shifts t by m minutes.
func AddMinutes(t time.Time, m int) time.Time {
	return t.Add(time.Duration(m) * time.Minute)
}

// LoadLocation resolves an IANA zone name. Empty or unknown names resolve to
// fallback, and the returned bool reports whether name itself was usable.
func LoadLocation(name string, fallback *time.Location) (*time.Location, bool) {
	if fallback == nil {
		fallback = time.UTC
	}
	if strings.TrimSpace(name) == "" {
		return fallback, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback, false
	}
	return loc, true
}

// MustDefaultLocation returns the default zone, or UTC when the tz database
// is unavailable.
func MustDefaultLocation() *time.Location {
	loc, _ := LoadLocation(DefaultZone, time.UTC)
	return loc
}

// Interval is a half-open [Start, End) range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Minutes is the interval length in whole minutes; 0 for inverted intervals.
func (iv Interval) Minutes() int {
	if !iv.End.After(iv.Start) {
		return 0
	}
	return int(iv.End.Sub(iv.Start) / time.Minute)
}

// Overlaps reports whether the two half-open intervals share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether t lies in [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}
