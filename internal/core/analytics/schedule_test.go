package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

func TestIsInScope(t *testing.T) {
	tests := []struct {
		name     string
		weekdays []int
		start    string
		date     string
		want     bool
	}{
		{name: "Empty weekdays means every day", start: "2024-01-01", date: "2024-01-16", want: true},
		{name: "Listed ISO weekday is in scope", weekdays: []int{1, 3}, start: "2024-01-01", date: "2024-01-15", want: true},
		{name: "Unlisted weekday is out of scope", weekdays: []int{1, 3}, start: "2024-01-01", date: "2024-01-16", want: false},
		{name: "Sunday maps to 7", weekdays: []int{7}, start: "2024-01-01", date: "2024-01-14", want: true},
		{name: "Never before the start date", start: "2024-01-20", date: "2024-01-19", want: false},
		{name: "Start date itself is in scope", start: "2024-01-20", date: "2024-01-20", want: true},
		{name: "Start date wins over a matching weekday", weekdays: []int{1}, start: "2024-01-22", date: "2024-01-15", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHabit("h1", "Read", true, tt.weekdays...)
			h.StartDate = day(tt.start)
			assert.Equal(t, tt.want, IsInScope(h, day(tt.date)))
		})
	}
}

func TestResolveScope(t *testing.T) {
	now := time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC)
	tuesday := day("2024-01-16")

	t.Run("Inactive habits never take part", func(t *testing.T) {
		archived := newHabit("h1", "Read", true)
		archivedAt := now
		archived.ArchivedAt = &archivedAt
		active := newHabit("h2", "Walk", true)

		scope := ResolveScope([]*domain.Habit{archived, active}, tuesday, nil, now)

		require.Len(t, scope.Habits, 1)
		assert.Equal(t, "h2", scope.Habits[0].ID)
		assert.False(t, scope.IsFallback)
	})

	t.Run("Falls back to every existing core habit when nothing is scheduled", func(t *testing.T) {
		mondayOnly := newHabit("h1", "Gym", true, 1)
		fridayOnly := newHabit("h2", "Swim", true, 5)
		bonus := newHabit("h3", "Guitar", false, 1)
		future := newHabit("h4", "Later", true, 1)
		future.StartDate = day("2024-02-01")

		scope := ResolveScope([]*domain.Habit{mondayOnly, fridayOnly, bonus, future}, tuesday, nil, now)

		assert.True(t, scope.IsFallback)
		var ids []string
		for _, h := range scope.Habits {
			ids = append(ids, h.ID)
		}
		assert.ElementsMatch(t, []string{"h1", "h2"}, ids)
	})

	t.Run("No fallback without any core habit", func(t *testing.T) {
		bonus := newHabit("h1", "Guitar", false, 1)

		scope := ResolveScope([]*domain.Habit{bonus}, tuesday, nil, now)

		assert.Empty(t, scope.Habits)
		assert.False(t, scope.IsFallback)
	})

	t.Run("Live snooze removes the penalty but keeps the habit visible", func(t *testing.T) {
		h1 := newHabit("h1", "Read", true)
		h2 := newHabit("h2", "Walk", true)
		snoozes := map[string]time.Time{
			"h1": now.Add(time.Hour),
			"h2": now.Add(-time.Hour),
		}

		scope := ResolveScope([]*domain.Habit{h1, h2}, tuesday, snoozes, now)

		assert.Len(t, scope.Habits, 2)
		assert.True(t, scope.Snoozed["h1"])
		assert.False(t, scope.Snoozed["h2"], "expired snooze must not apply")
		require.Len(t, scope.Core(), 1)
		assert.Equal(t, "h2", scope.Core()[0].ID)
	})
}
