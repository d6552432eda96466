package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestToCanonical(t *testing.T) {
	chicago := mustLoad(t, "America/Chicago")

	tests := []struct {
		name  string
		local string
		loc   *time.Location
		want  string
	}{
		{"winter offset", "2025-01-15T09:30", chicago, "2025-01-15 15:30"},
		{"summer offset", "2025-07-04T09:30", chicago, "2025-07-04 14:30"},
		{"crosses midnight", "2025-03-01T22:15", chicago, "2025-03-02 04:15"},
		{"seconds truncated", "2025-01-15T09:30:59", chicago, "2025-01-15 15:30"},
		{"space separated", "2025-01-15 09:30", chicago, "2025-01-15 15:30"},
		{"surrounding whitespace", "  2025-01-15T09:30 ", chicago, "2025-01-15 15:30"},
		{"utc zone", "2025-01-15T09:30", time.UTC, "2025-01-15 09:30"},
		{"nil zone means utc", "2025-01-15T09:30", nil, "2025-01-15 09:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToCanonical(tt.local, tt.loc)
			require.NoError(t, err)
			assert.True(t, IsCanonical(got))
			assert.Equal(t, tt.want, FormatCanonical(got))
		})
	}
}

func TestToCanonical_DaylightSavingTransitions(t *testing.T) {
	chicago := mustLoad(t, "America/Chicago")
	berlin := mustLoad(t, "Europe/Berlin")

	tests := []struct {
		name      string
		local     string
		loc       *time.Location
		want      string
		wantLocal string
	}{
		{"gap moves past the jump", "2025-03-09T02:30", chicago, "2025-03-09 08:30", "2025-03-09 03:30"},
		{"gap start", "2025-03-09T02:00", chicago, "2025-03-09 08:00", "2025-03-09 03:00"},
		{"just before gap", "2025-03-09T01:59", chicago, "2025-03-09 07:59", "2025-03-09 01:59"},
		{"just after gap", "2025-03-09T03:00", chicago, "2025-03-09 08:00", "2025-03-09 03:00"},
		{"overlap takes first occurrence", "2025-11-02T01:30", chicago, "2025-11-02 06:30", "2025-11-02 01:30"},
		{"gap in another zone", "2025-03-30T02:15", berlin, "2025-03-30 01:15", "2025-03-30 03:15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToCanonical(tt.local, tt.loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatCanonical(got))
			assert.Equal(t, tt.wantLocal, FormatLocal(got, tt.loc))
		})
	}
}

func TestToCanonical_Invalid(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "2025-13-01T10:00", "2025-01-15", "15/01/2025 10:00"} {
		_, err := ToCanonical(in, time.UTC)
		assert.ErrorIs(t, err, ErrInvalidLocalTime, in)
	}
}

func TestToCanonical_RoundTrip(t *testing.T) {
	zones := []string{"America/Chicago", "Europe/Berlin", "Asia/Kolkata", "Australia/Adelaide", "UTC"}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, zone := range zones {
		loc := mustLoad(t, zone)
		for i := 0; i < 365*24; i += 7 {
			wall := start.Add(time.Duration(i)*time.Hour + time.Duration(i%60)*time.Minute).In(loc)
			local := wall.Format("2006-01-02T15:04")

			got, err := ToCanonical(local, loc)
			require.NoError(t, err)
			assert.Equal(t, wall.Format(CanonicalLayout), FormatLocal(got, loc), "%s %s", zone, local)
		}
	}
}

func TestParseCanonical(t *testing.T) {
	got, err := ParseCanonical("2025-06-01 12:05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC), got)
	assert.True(t, IsCanonical(got))

	_, err = ParseCanonical("2025-06-01T12:05")
	assert.Error(t, err)
}

func TestCanonicalOrderingIsLexical(t *testing.T) {
	a := FormatCanonical(time.Date(2025, 9, 30, 23, 59, 0, 0, time.UTC))
	b := FormatCanonical(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC))
	assert.Less(t, a, b)
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.False(t, IsCanonical(time.Date(2025, 1, 1, 10, 0, 1, 0, time.UTC)))
	assert.False(t, IsCanonical(time.Date(2025, 1, 1, 10, 0, 0, 0, mustLoad(t, "America/Chicago"))))
}
