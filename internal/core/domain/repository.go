package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
)

type HabitRepository interface {
	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all non-deleted habits of a user, archived ones included.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)
}

type RecordRepository interface {
	// LoadRange returns completions, day modes and snoozes whose date falls in [from, to].
	// Bounds are civil dates.
	LoadRange(ctx context.Context, userID string, from, to time.Time) (*RecordSet, error)

	// UpsertCompletion stores the completion for (habit, date), replacing any previous one.
	UpsertCompletion(ctx context.Context, c *Completion) error

	// UpsertDayMode stores the mode for (user, date), replacing any previous one.
	UpsertDayMode(ctx context.Context, m *DayMode) error

	// UpsertSnooze stores the snooze for (habit, date), replacing any previous one.
	UpsertSnooze(ctx context.Context, s *Snooze) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// MetricRepository is fed by the health-data collaborator. It is optional.
type MetricRepository interface {
	ListMetric(ctx context.Context, userID, name string, from, to time.Time) ([]MetricSample, error)
}
