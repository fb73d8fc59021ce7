package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

// Day is one classified entry of the history with the data it was judged on.
type Day struct {
	Date     time.Time
	Status   domain.DayStatus
	CheckIns []CheckIn
	// InScope lists the ids of the habits scheduled for the day.
	InScope []string
	// Snoozed lists the in-scope ids whose snooze was live; they carry no penalty.
	Snoozed []string
}

// HistoryInput is an immutable snapshot of a user's records. Records are
// expected to be validated already.
type HistoryInput struct {
	Habits       []*domain.Habit
	Records      domain.RecordSet
	From         time.Time
	To           time.Time
	Today        time.Time
	Now          time.Time
	AccountStart time.Time
}

type dayRecords struct {
	completions map[string]bool
	order       []string
	snoozes     map[string]time.Time
	mode        domain.DayModeKind
}

// History classifies every civil date in [From, To], oldest first.
func (c *Classifier) History(in HistoryInput) []Day {
	labels := make(map[string]string, len(in.Habits))
	for _, h := range in.Habits {
		labels[h.ID] = h.Title
	}

	byDate := indexRecords(in.Records)

	var days []Day
	for d := in.From; !d.After(in.To); d = d.AddDate(0, 0, 1) {
		rec := byDate[domain.DateKey(d)]

		var snoozes map[string]time.Time
		var mode domain.DayModeKind
		var checkIns []CheckIn
		if rec != nil {
			snoozes = rec.snoozes
			mode = rec.mode
			for _, id := range rec.order {
				checkIns = append(checkIns, CheckIn{HabitID: id, Label: labels[id], Done: rec.completions[id]})
			}
		}

		scope := ResolveScope(in.Habits, d, snoozes, in.Now)
		inScope := make([]string, 0, len(scope.Habits))
		var snoozed []string
		for _, h := range scope.Habits {
			inScope = append(inScope, h.ID)
			if scope.Snoozed[h.ID] {
				snoozed = append(snoozed, h.ID)
			}
		}

		status := c.Classify(DayInput{
			Date:         d,
			Scope:        scope,
			CheckIns:     checkIns,
			Mode:         mode,
			AccountStart: in.AccountStart,
			Today:        in.Today,
		})

		days = append(days, Day{Date: d, Status: status, CheckIns: checkIns, InScope: inScope, Snoozed: snoozed})
	}

	return days
}

func indexRecords(rs domain.RecordSet) map[string]*dayRecords {
	byDate := make(map[string]*dayRecords)
	get := func(key string) *dayRecords {
		r, ok := byDate[key]
		if !ok {
			r = &dayRecords{completions: make(map[string]bool), snoozes: make(map[string]time.Time)}
			byDate[key] = r
		}
		return r
	}

	for _, c := range rs.Completions {
		r := get(c.Date)
		if _, seen := r.completions[c.HabitID]; !seen {
			r.order = append(r.order, c.HabitID)
		}
		// duplicates: the last record wins
		r.completions[c.HabitID] = c.Done()
	}
	for _, m := range rs.DayModes {
		get(m.Date).mode = m.Mode
	}
	for _, s := range rs.Snoozes {
		r := get(s.Date)
		if prev, ok := r.snoozes[s.HabitID]; !ok || s.SnoozedUntil.After(prev) {
			r.snoozes[s.HabitID] = s.SnoozedUntil
		}
	}

	return byDate
}
