package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

// IsInScope reports whether habit h is scheduled on the civil date.
func IsInScope(h *domain.Habit, date time.Time) bool {
	if domain.DateKey(date) < domain.DateKey(h.StartDate) {
		return false
	}
	if len(h.Weekdays) == 0 {
		return true
	}

	wd := domain.ISOWeekday(date)
	for _, d := range h.Weekdays {
		if d == wd {
			return true
		}
	}
	return false
}

// Scope is the set of habits a date is judged against.
type Scope struct {
	Habits []*domain.Habit
	// Snoozed habits stay visible but carry no penalty for the date.
	Snoozed    map[string]bool
	IsFallback bool
}

// Core returns the in-scope core habits that are not snoozed.
func (s Scope) Core() []*domain.Habit {
	var core []*domain.Habit
	for _, h := range s.Habits {
		if h.IsCore && !s.Snoozed[h.ID] {
			core = append(core, h)
		}
	}
	return core
}

// ResolveScope computes the scope of date. snoozedUntil maps habit ids to the
// snooze expiry recorded for that date; a snooze counts while it is after now.
func ResolveScope(habits []*domain.Habit, date time.Time, snoozedUntil map[string]time.Time, now time.Time) Scope {
	scope := Scope{Snoozed: make(map[string]bool)}

	hasCore := false
	for _, h := range habits {
		if !h.IsActive() {
			continue
		}
		if h.IsCore {
			hasCore = true
		}
		if IsInScope(h, date) {
			scope.Habits = append(scope.Habits, h)
		}
	}

	if len(scope.Habits) == 0 && hasCore {
		key := domain.DateKey(date)
		for _, h := range habits {
			if h.IsActive() && h.IsCore && domain.DateKey(h.StartDate) <= key {
				scope.Habits = append(scope.Habits, h)
			}
		}
		scope.IsFallback = len(scope.Habits) > 0
	}

	for _, h := range scope.Habits {
		if until, ok := snoozedUntil[h.ID]; ok && until.After(now) {
			scope.Snoozed[h.ID] = true
		}
	}

	return scope
}
