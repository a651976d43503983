package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsightNotificationID_StablePerUserAndWeek(t *testing.T) {
	a := InsightNotificationID("user-1", "2026-08-17")
	b := InsightNotificationID("user-1", "2026-08-17")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, InsightNotificationID("user-2", "2026-08-17"))
	assert.NotEqual(t, a, InsightNotificationID("user-1", "2026-08-24"))
}

func TestReminderNotificationID_DistinctPerWindow(t *testing.T) {
	dayBefore := ReminderNotificationID("cons-1", "day_before")
	hourBefore := ReminderNotificationID("cons-1", "hour_before")
	assert.NotEqual(t, dayBefore, hourBefore)
	assert.Equal(t, dayBefore, ReminderNotificationID("cons-1", "day_before"))
}
