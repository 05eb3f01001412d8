package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	now := time.Date(2024, 3, 15, 17, 42, 9, 123, time.Local)
	got := StartOfDay(now)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local), got)
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "mid-week lands on the previous Monday",
			now:  time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local), // Friday
			want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local),
		},
		{
			name: "Monday is its own week start",
			now:  time.Date(2024, 3, 11, 0, 0, 0, 1, time.Local),
			want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local),
		},
		{
			name: "Sunday reaches back six days",
			now:  time.Date(2024, 3, 17, 23, 59, 0, 0, time.Local),
			want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StartOfWeek(tt.now))
		})
	}
}

func TestStartOfMonth(t *testing.T) {
	now := time.Date(2024, 2, 29, 8, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local), StartOfMonth(now))
}

func TestStart_BoundaryInclusion(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)

	start, ok := Start(Today, now)
	if !ok {
		t.Fatal("Start(today) should produce a bound")
	}

	// An event at today's midnight is inside the window; one a millisecond
	// before yesterday ended is not.
	atMidnight := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	beforeMidnight := atMidnight.Add(-time.Millisecond)

	assert.False(t, atMidnight.Before(start), "midnight event must be included")
	assert.True(t, beforeMidnight.Before(start), "pre-midnight event must be excluded")
}

func TestStart_AllHasNoBound(t *testing.T) {
	_, ok := Start(All, time.Now())
	assert.False(t, ok)
	_, ok = Start("", time.Now())
	assert.False(t, ok)
}

func TestValid(t *testing.T) {
	for _, name := range []string{"", "all", "today", "week", "month"} {
		assert.True(t, Valid(name), name)
	}
	assert.False(t, Valid("fortnight"))
}
