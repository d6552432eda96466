package domain

import (
	"errors"
	"strings"
	"time"
)

// CanonicalLayout is the persisted, lexically sortable UTC minute format.
const CanonicalLayout = "2006-01-02 15:04"

// localLayouts are the accepted user-supplied local date-time forms. The first
// one is what an HTML datetime-local input submits.
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

var ErrInvalidLocalTime = errors.New("invalid local date-time")

// ToCanonical interprets local as a wall-clock time in loc and returns the
// corresponding UTC instant truncated to the minute. An ambiguous time in a
// backward transition resolves to its first occurrence. A time skipped by a
// forward transition is read with the offset in effect before it, so it
// lands after the gap (02:30 on a spring-forward night becomes 03:30).
func ToCanonical(local string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	local = strings.TrimSpace(local)
	for _, layout := range localLayouts {
		wall, err := time.Parse(layout, local)
		if err != nil {
			continue
		}
		return CanonicalMinute(resolveWallClock(wall, loc)), nil
	}
	return time.Time{}, ErrInvalidLocalTime
}

// resolveWallClock places the zone-less wall time (parsed as UTC) in loc.
func resolveWallClock(wall time.Time, loc *time.Location) time.Time {
	t := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, loc)
	if t.Hour() == wall.Hour() && t.Minute() == wall.Minute() {
		return t
	}

	// Skipped wall time. Gaps are at most a few hours, so half a day earlier
	// is safely on the old side of the transition.
	_, before := wall.Add(-12 * time.Hour).In(loc).Zone()
	return wall.Add(-time.Duration(before) * time.Second)
}

// CanonicalMinute converts t to UTC and drops seconds and below.
func CanonicalMinute(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

// IsCanonical reports whether t is already UTC at minute precision.
func IsCanonical(t time.Time) bool {
	return t.Location() == time.UTC && t.Equal(t.Truncate(time.Minute))
}

// FormatCanonical renders t in the persisted format.
func FormatCanonical(t time.Time) string {
	return CanonicalMinute(t).Format(CanonicalLayout)
}

// ParseCanonical reads a persisted timestamp.
func ParseCanonical(s string) (time.Time, error) {
	return time.ParseInLocation(CanonicalLayout, s, time.UTC)
}

// FormatLocal renders a canonical instant as a wall-clock minute in loc.
func FormatLocal(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(CanonicalLayout)
}
