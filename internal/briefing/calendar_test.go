package briefing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/vault-agent/internal/briefing"
)

func TestCurrentWeek(t *testing.T) {
	t.Parallel()

	t.Run("midweek anchors to the preceding Monday", func(t *testing.T) {
		t.Parallel()

		// Wednesday.
		now := time.Date(2025, 6, 4, 15, 30, 0, 0, time.UTC)
		week := briefing.CurrentWeek(now)

		assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), week.Start)
		assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), week.End)
		assert.Equal(t, time.Monday, week.Start.Weekday())
		assert.Equal(t, time.Sunday, week.End.Weekday())
	})

	t.Run("Monday anchors to itself", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 6, 2, 0, 0, 1, 0, time.UTC)
		week := briefing.CurrentWeek(now)

		assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), week.Start)
	})

	t.Run("Sunday belongs to the week that started six days earlier", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 6, 8, 23, 59, 0, 0, time.UTC)
		week := briefing.CurrentWeek(now)

		assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), week.Start)
	})

	t.Run("carries the ISO week number", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
		_, want := now.ISOWeek()
		assert.Equal(t, want, briefing.CurrentWeek(now).ISOWeek)
	})
}

func TestIsBriefingDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)

	assert.True(t, briefing.IsBriefingDue(time.Time{}, now), "always due when never generated")
	assert.False(t, briefing.IsBriefingDue(now.AddDate(0, 0, -6), now))
	assert.True(t, briefing.IsBriefingDue(now.AddDate(0, 0, -7), now))
	assert.True(t, briefing.IsBriefingDue(now.AddDate(0, 0, -30), now))
}
