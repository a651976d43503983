package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextStreak(t *testing.T) {
	loc := time.UTC
	monday := time.Date(2026, 8, 24, 20, 0, 0, 0, loc)

	t.Run("first activity starts the streak", func(t *testing.T) {
		current, longest := NextStreak(0, 0, time.Time{}, monday, loc)
		assert.Equal(t, 1, current)
		assert.Equal(t, 1, longest)
	})

	t.Run("same day keeps the streak", func(t *testing.T) {
		current, longest := NextStreak(3, 5, monday, monday.Add(2*time.Hour), loc)
		assert.Equal(t, 3, current)
		assert.Equal(t, 5, longest)
	})

	t.Run("next calendar day extends it", func(t *testing.T) {
		// late evening to early next morning is still consecutive
		current, longest := NextStreak(3, 3, monday, monday.Add(8*time.Hour), loc)
		assert.Equal(t, 4, current)
		assert.Equal(t, 4, longest)
	})

	t.Run("gap resets to one", func(t *testing.T) {
		current, longest := NextStreak(6, 9, monday, monday.Add(3*24*time.Hour), loc)
		assert.Equal(t, 1, current)
		assert.Equal(t, 9, longest)
	})

	t.Run("longest never trails current", func(t *testing.T) {
		current, longest := NextStreak(9, 9, monday, monday.Add(6*time.Hour), loc)
		assert.Equal(t, 10, current)
		assert.Equal(t, 10, longest)
	})
}
