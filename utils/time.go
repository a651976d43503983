package utils

import (
	"time"
)

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// WeekWindows returns the four boundaries used by the weekly insight job:
// this week is [thisWeekStart, now], last week is [lastWeekStart, lastWeekEnd)
// with lastWeekEnd == thisWeekStart so the boundary instant is counted once.
func WeekWindows(now time.Time) (thisWeekStart, lastWeekStart, lastWeekEnd time.Time) {
	thisWeekStart = now.Add(-Week)
	lastWeekStart = now.Add(-2 * Week)
	lastWeekEnd = thisWeekStart
	return
}

// WeekStartDate collapses a window start to a date string, used as the
// deterministic part of an insight notification identity.
func WeekStartDate(thisWeekStart time.Time) string {
	return thisWeekStart.UTC().Format("2006-01-02")
}

func GetDayBeginTime(t time.Time) time.Time {
	year, month, day := t.Date()
	beginOfDay := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return beginOfDay
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// IsNextDay reports whether b falls on the calendar day right after a in loc.
func IsNextDay(a, b time.Time, loc *time.Location) bool {
	next := GetDayBeginTime(a.In(loc)).AddDate(0, 0, 1)
	return SameDay(next, b, loc)
}

func Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
