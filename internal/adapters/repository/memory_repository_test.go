package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestInMemoryHabitRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryHabitRepository()

	deleted := time.Now()
	require.NoError(t, repo.Create(ctx, &domain.Habit{ID: "b", UserID: "u1", SortOrder: 1}))
	require.NoError(t, repo.Create(ctx, &domain.Habit{ID: "a", UserID: "u1", SortOrder: 1}))
	require.NoError(t, repo.Create(ctx, &domain.Habit{ID: "c", UserID: "u1", SortOrder: 0}))
	require.NoError(t, repo.Create(ctx, &domain.Habit{ID: "gone", UserID: "u1", DeletedAt: &deleted}))
	require.NoError(t, repo.Create(ctx, &domain.Habit{ID: "other", UserID: "u2"}))

	t.Run("List is ordered and skips deleted habits", func(t *testing.T) {
		habits, err := repo.ListByUserID(ctx, "u1")
		require.NoError(t, err)

		var ids []string
		for _, h := range habits {
			ids = append(ids, h.ID)
		}
		assert.Equal(t, []string{"c", "a", "b"}, ids)
	})

	t.Run("Deleted habits are not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "gone")
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}

func TestInMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserRepository()
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Timezone: "UTC"}))

	u, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "UTC", u.Timezone)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestInMemoryRecordRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRecordRepository()

	first := &domain.Completion{ID: "c1", UserID: "u1", HabitID: "h1", Date: "2024-01-02", Value: 0}
	require.NoError(t, repo.UpsertCompletion(ctx, first))
	second := &domain.Completion{ID: "c2", UserID: "u1", HabitID: "h1", Date: "2024-01-02", Value: 1}
	require.NoError(t, repo.UpsertCompletion(ctx, second))
	require.NoError(t, repo.UpsertCompletion(ctx, &domain.Completion{ID: "c3", UserID: "u1", HabitID: "h1", Date: "2024-01-01", Value: 1}))
	require.NoError(t, repo.UpsertCompletion(ctx, &domain.Completion{ID: "c4", UserID: "u1", HabitID: "h1", Date: "2024-02-01", Value: 1}))
	require.NoError(t, repo.UpsertCompletion(ctx, &domain.Completion{ID: "c5", UserID: "u2", HabitID: "h9", Date: "2024-01-02", Value: 1}))
	require.NoError(t, repo.UpsertDayMode(ctx, &domain.DayMode{UserID: "u1", Date: "2024-01-02", Mode: domain.ModeSick}))
	require.NoError(t, repo.UpsertDayMode(ctx, &domain.DayMode{UserID: "u1", Date: "2024-01-02", Mode: domain.ModeTravel}))
	require.NoError(t, repo.UpsertSnooze(ctx, &domain.Snooze{ID: "s1", UserID: "u1", HabitID: "h1", Date: "2024-01-03", SnoozedUntil: time.Now()}))

	set, err := repo.LoadRange(ctx, "u1", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-31"))
	require.NoError(t, err)

	t.Run("Upsert keeps one completion per habit and date", func(t *testing.T) {
		require.Len(t, set.Completions, 2)
		assert.Equal(t, "2024-01-01", set.Completions[0].Date)
		assert.Equal(t, 1, set.Completions[1].Value)
		assert.Equal(t, "c1", second.ID, "the stored id is preserved")
	})

	t.Run("Day mode is replaced", func(t *testing.T) {
		require.Len(t, set.DayModes, 1)
		assert.Equal(t, domain.ModeTravel, set.DayModes[0].Mode)
	})

	t.Run("Snoozes are loaded", func(t *testing.T) {
		assert.Len(t, set.Snoozes, 1)
	})
}

func TestInMemoryMetricRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryMetricRepository()
	repo.Add(
		domain.MetricSample{UserID: "u1", Name: "sleep_hours", Date: "2024-01-01", Value: 7},
		domain.MetricSample{UserID: "u1", Name: "steps", Date: "2024-01-01", Value: 9000},
		domain.MetricSample{UserID: "u1", Name: "sleep_hours", Date: "2024-03-01", Value: 6},
	)

	samples, err := repo.ListMetric(ctx, "u1", "sleep_hours", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-31"))
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 7.0, samples[0].Value)
}
