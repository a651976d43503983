package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekWindows(t *testing.T) {
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	thisWeekStart, lastWeekStart, lastWeekEnd := WeekWindows(now)
	assert.Equal(t, time.Date(2026, 8, 17, 9, 0, 0, 0, time.UTC), thisWeekStart)
	assert.Equal(t, time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC), lastWeekStart)
	assert.Equal(t, thisWeekStart, lastWeekEnd)
}

func TestWeekStartDate(t *testing.T) {
	start := time.Date(2026, 8, 17, 23, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "2026-08-17", WeekStartDate(start))
}

func TestSameDayAndNextDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Budapest")
	assert.NoError(t, err)

	morning := time.Date(2026, 8, 24, 8, 0, 0, 0, loc)
	evening := time.Date(2026, 8, 24, 23, 30, 0, 0, loc)
	tomorrow := time.Date(2026, 8, 25, 0, 30, 0, 0, loc)

	assert.True(t, SameDay(morning, evening, loc))
	assert.False(t, SameDay(evening, tomorrow, loc))
	assert.True(t, IsNextDay(evening, tomorrow, loc))
	assert.False(t, IsNextDay(morning, evening, loc))
	assert.False(t, IsNextDay(morning, tomorrow.AddDate(0, 0, 1), loc))
}

func TestGetDayBeginTime(t *testing.T) {
	loc := time.UTC
	at := time.Date(2026, 8, 24, 15, 42, 7, 12345, loc)
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, loc), GetDayBeginTime(at))
}
