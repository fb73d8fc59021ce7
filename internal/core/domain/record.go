package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidValue    = errors.New("completion value must be 0 or 1")
	ErrInvalidDayMode  = errors.New("invalid day mode (must be normal, travel, or sick)")
	ErrInvalidMetric   = errors.New("metric value must be a non-negative number")
	ErrInvalidSnooze   = errors.New("snoozed_until is required")
	ErrHabitIDRequired = errors.New("habit_id is required")
	ErrInvalidChange   = errors.New("invalid change kind (must be habit, day, or records)")
)

// ChangeKind names what changed when a collaborator signals new data.
type ChangeKind string

const (
	ChangeHabit   ChangeKind = "habit"
	ChangeDay     ChangeKind = "day"
	ChangeRecords ChangeKind = "records"
)

func (k ChangeKind) Valid() bool {
	return k == ChangeHabit || k == ChangeDay || k == ChangeRecords
}

type DayModeKind string

const (
	ModeNormal DayModeKind = "normal"
	ModeTravel DayModeKind = "travel"
	ModeSick   DayModeKind = "sick"
)

// Relaxed reports whether the mode grades the day more forgivingly.
func (m DayModeKind) Relaxed() bool {
	return m == ModeTravel || m == ModeSick
}

func (m DayModeKind) Valid() bool {
	switch m {
	case ModeNormal, ModeTravel, ModeSick:
		return true
	}
	return false
}

// Completion records whether a habit was done on a date.
// Value 1 means done, 0 means explicitly not done; absence means not recorded.
type Completion struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	HabitID   string    `json:"habit_id" db:"habit_id"`
	Date      string    `json:"date" db:"completion_date"`
	Value     int       `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (c *Completion) Done() bool {
	return c.Value == 1
}

func (c *Completion) Validate() error {
	if strings.TrimSpace(c.HabitID) == "" {
		return ErrHabitIDRequired
	}
	if _, err := ParseDate(c.Date); err != nil {
		return err
	}
	if c.Value != 0 && c.Value != 1 {
		return ErrInvalidValue
	}
	return nil
}

type DayMode struct {
	UserID    string      `json:"user_id" db:"user_id"`
	Date      string      `json:"date" db:"mode_date"`
	Mode      DayModeKind `json:"mode" db:"mode"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

func (m *DayMode) Validate() error {
	if _, err := ParseDate(m.Date); err != nil {
		return err
	}
	if !m.Mode.Valid() {
		return ErrInvalidDayMode
	}
	return nil
}

// Snooze suppresses the penalty of a habit on a date while SnoozedUntil is in the future.
type Snooze struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	HabitID      string    `json:"habit_id" db:"habit_id"`
	Date         string    `json:"date" db:"snooze_date"`
	SnoozedUntil time.Time `json:"snoozed_until" db:"snoozed_until"`
}

func (s *Snooze) Validate() error {
	if strings.TrimSpace(s.HabitID) == "" {
		return ErrHabitIDRequired
	}
	if _, err := ParseDate(s.Date); err != nil {
		return err
	}
	if s.SnoozedUntil.IsZero() {
		return ErrInvalidSnooze
	}
	return nil
}

// MetricSample is one value of an external per-day metric, e.g. sleep hours.
type MetricSample struct {
	UserID string  `json:"user_id" db:"user_id"`
	Name   string  `json:"name" db:"metric_name"`
	Date   string  `json:"date" db:"metric_date"`
	Value  float64 `json:"value" db:"value"`
}

func (m *MetricSample) Validate() error {
	if _, err := ParseDate(m.Date); err != nil {
		return err
	}
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) || m.Value < 0 {
		return ErrInvalidMetric
	}
	return nil
}

// RecordSet is everything stored for a user over a date range.
type RecordSet struct {
	Completions []Completion
	DayModes    []DayMode
	Snoozes     []Snooze
}
