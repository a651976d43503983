package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markelira/elira-insight/models"
	"github.com/markelira/elira-insight/models/platform"
)

func TestBuildEmployeeRow_Statuses(t *testing.T) {
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	user := &platform.User{UID: "emp-1", GivenName: "Anna", FamilyName: "Kovács", Email: "anna@ceg.hu"}

	t.Run("no progress record is not-started", func(t *testing.T) {
		row := BuildEmployeeRow(user, nil, now)
		assert.Equal(t, models.EmployeeNotStarted, row.Status)
		assert.Equal(t, 0, row.ProgressPercent)
	})

	t.Run("recent activity is active", func(t *testing.T) {
		progress := &platform.Progress{
			UserID:               "emp-1",
			TotalCoursesEnrolled: 2,
			CompletedCourses:     1,
			LastActivityAt:       now.Add(-3 * 24 * time.Hour),
		}
		row := BuildEmployeeRow(user, progress, now)
		assert.Equal(t, models.EmployeeActive, row.Status)
		assert.Equal(t, 50, row.ProgressPercent)
	})

	t.Run("stale activity is at-risk", func(t *testing.T) {
		progress := &platform.Progress{
			UserID:               "emp-1",
			TotalCoursesEnrolled: 2,
			LastActivityAt:       now.Add(-20 * 24 * time.Hour),
		}
		row := BuildEmployeeRow(user, progress, now)
		assert.Equal(t, models.EmployeeAtRisk, row.Status)
	})

	t.Run("all courses done is completed even when stale", func(t *testing.T) {
		progress := &platform.Progress{
			UserID:               "emp-1",
			TotalCoursesEnrolled: 2,
			CompletedCourses:     2,
			LastActivityAt:       now.Add(-60 * 24 * time.Hour),
		}
		row := BuildEmployeeRow(user, progress, now)
		assert.Equal(t, models.EmployeeCompleted, row.Status)
		assert.Equal(t, 100, row.ProgressPercent)
	})
}

func TestRenderCSV(t *testing.T) {
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	user := &platform.User{UID: "emp-1", GivenName: "Anna", FamilyName: "Kovács", Email: "anna@ceg.hu", JobTitle: "Marketing"}
	progress := &platform.Progress{
		UserID:                   "emp-1",
		TotalCoursesEnrolled:     2,
		CompletedCourses:         1,
		TotalLearningTimeSeconds: 3661,
		LastActivityAt:           now.Add(-time.Hour),
	}
	rows := []*models.EmployeeProgress{
		BuildEmployeeRow(user, progress, now),
		BuildEmployeeRow(&platform.User{UID: "emp-2", Email: "no@ceg.hu"}, nil, now),
	}

	data, err := RenderCSV(rows)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "user_id", records[0][0])
	assert.Equal(t, "emp-1", records[1][0])
	assert.Equal(t, "Kovács Anna", records[1][1])
	assert.Equal(t, "1h 1m", records[1][7])
	assert.Equal(t, models.EmployeeNotStarted, records[2][9])
	// not-started rows leave the timestamp column empty
	assert.Equal(t, "", records[2][8])
}

func TestSummarizeRows(t *testing.T) {
	rows := []*models.EmployeeProgress{
		{Status: models.EmployeeActive, ProgressPercent: 50},
		{Status: models.EmployeeAtRisk, ProgressPercent: 10},
		{Status: models.EmployeeCompleted, ProgressPercent: 100},
		{Status: models.EmployeeNotStarted},
	}
	stats := SummarizeRows(rows)
	assert.Equal(t, 4, stats.TotalEmployees)
	assert.Equal(t, 1, stats.ActiveEmployees)
	assert.Equal(t, 1, stats.AtRiskCount)
	assert.Equal(t, 1, stats.CompletedCount)
	assert.Equal(t, 40, stats.AverageProgress)
}
