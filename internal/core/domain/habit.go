package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidWeekdays    = errors.New("invalid weekdays (must be 1-7, Monday=1)")
)

const (
	MaxTitleLen = 100
)

// Habit is a habit definition as owned by the habit-management subsystem.
// The analytics engine only reads it.
type Habit struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	IsCore    bool   `json:"is_core"`
	SortOrder int    `json:"sort_order"`

	// Weekdays holds ISO weekdays (Monday=1 ... Sunday=7). Empty means every day.
	Weekdays []int `json:"weekdays,omitempty"`

	// StartDate is the civil date the habit was created on, stored as UTC midnight.
	StartDate time.Time `json:"start_date"`

	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

func normalizeWeekdays(days []int) []int {
	if len(days) == 0 {
		return nil
	}

	uniqueMap := make(map[int]bool)
	var uniqueDays []int
	for _, d := range days {
		if !uniqueMap[d] {
			uniqueMap[d] = true
			uniqueDays = append(uniqueDays, d)
		}
	}

	sort.Ints(uniqueDays)
	return uniqueDays
}

func validateHabit(userID, title string, weekdays []int) error {
	if strings.TrimSpace(userID) == "" {
		return ErrHabitInvalidUserID
	}

	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return ErrHabitTitleEmpty
	}
	if len(trimmedTitle) > MaxTitleLen {
		return ErrHabitTitleTooLong
	}

	for _, day := range weekdays {
		if day < 1 || day > 7 {
			return ErrInvalidWeekdays
		}
	}

	return nil
}

// Normalized validates a definition received from the habit subsystem and
// returns a copy with a trimmed title and sorted, deduplicated weekdays.
// The receiver is left untouched.
func (h *Habit) Normalized() (*Habit, error) {
	if err := validateHabit(h.UserID, h.Title, h.Weekdays); err != nil {
		return nil, err
	}

	out := *h
	out.Title = strings.TrimSpace(h.Title)
	out.Weekdays = normalizeWeekdays(h.Weekdays)
	return &out, nil
}

// IsActive reports whether the habit still takes part in day classification.
func (h *Habit) IsActive() bool {
	return h.ArchivedAt == nil && h.DeletedAt == nil
}
