package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func newHabit(id, title string, core bool, weekdays ...int) *domain.Habit {
	return &domain.Habit{
		ID:        id,
		UserID:    "user-1",
		Title:     title,
		IsCore:    core,
		Weekdays:  weekdays,
		StartDate: day("2023-01-01"),
	}
}

// colored builds consecutive days starting at start with the given colors.
func colored(start string, colors ...domain.Color) []Day {
	d := day(start)
	out := make([]Day, 0, len(colors))
	for _, c := range colors {
		out = append(out, Day{Date: d, Status: domain.DayStatus{Date: domain.DateKey(d), Color: c}})
		d = d.AddDate(0, 0, 1)
	}
	return out
}

func judgedAt(date string, color domain.Color) Day {
	return Day{Date: day(date), Status: domain.DayStatus{Date: date, Color: color}}
}

func findInsight(list []domain.Insight, t domain.InsightType) *domain.Insight {
	for i := range list {
		if list[i].Type == t {
			return &list[i]
		}
	}
	return nil
}

const (
	G = domain.ColorGreen
	Y = domain.ColorYellow
	R = domain.ColorRed
	E = domain.ColorEmpty
	P = domain.ColorPending
)
