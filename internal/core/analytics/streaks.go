package analytics

import (
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

// window keeps the days inside the lookback window ending today, oldest first.
func window(days []Day, today time.Time, lookback int) []Day {
	from := domain.DateKey(today.AddDate(0, 0, -(lookback - 1)))
	to := domain.DateKey(today)

	out := make([]Day, 0, len(days))
	for _, d := range days {
		key := domain.DateKey(d.Date)
		if key >= from && key <= to {
			out = append(out, d)
		}
	}
	return out
}

// ComputeStreaks derives the streak snapshot from days ordered oldest to newest.
// Empty days carry no commitment: they neither extend nor break a run.
func ComputeStreaks(days []Day, today time.Time, cfg Config) domain.StreakSnapshot {
	cfg = cfg.normalized()
	days = window(days, today, cfg.LookbackDays)

	snap := domain.StreakSnapshot{
		DaysSinceLastGreen: -1,
		CategoryStreaks:    make(map[string]int, len(cfg.Categories)),
	}

	var runs []int
	run := 0
	todayKey := domain.DateKey(today)
	var lastGreen time.Time
	hasGreen := false

	for _, d := range days {
		switch d.Status.Color {
		case domain.ColorEmpty:
			continue
		case domain.ColorGreen:
			run++
			snap.TotalGreenDays++
			if d.Status.Date < todayKey {
				lastGreen = d.Date
				hasGreen = true
			}
		default:
			if run > 0 {
				runs = append(runs, run)
			}
			run = 0
		}
	}

	snap.CurrentStreak = run
	for _, r := range runs {
		snap.BestStreak = max(snap.BestStreak, r)
	}
	snap.BestStreak = max(snap.BestStreak, run)

	snap.PreviousBestStreak = snap.BestStreak
	if run > 0 && run == snap.BestStreak {
		prev := 0
		for _, r := range runs {
			prev = max(prev, r)
		}
		snap.PreviousBestStreak = prev
	}

	if hasGreen {
		snap.DaysSinceLastGreen = domain.DaysBetween(lastGreen, today) - 1
	}

	for _, cat := range cfg.Categories {
		snap.CategoryStreaks[cat.Name] = categoryStreak(days, cat)
	}

	snap.Period = periodStats(days, today)

	return snap
}

func categoryStreak(days []Day, cat Category) int {
	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		if matchesCategory(d.CheckIns, cat) {
			streak++
			continue
		}
		if d.Status.Color == domain.ColorEmpty {
			continue
		}
		break
	}
	return streak
}

func matchesCategory(checkIns []CheckIn, cat Category) bool {
	for _, ci := range checkIns {
		if ci.Done && cat.Keywords.Match(ci.Label) {
			return true
		}
	}
	return false
}

func periodStats(days []Day, today time.Time) domain.PeriodStats {
	var p domain.PeriodStats

	weekStart := domain.DateKey(domain.WeekStart(today))
	lastWeekStart := domain.DateKey(domain.WeekStart(today).AddDate(0, 0, -7))
	monthStart := domain.DateKey(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC))
	todayKey := domain.DateKey(today)

	done, possible := 0, 0
	for _, d := range days {
		key := d.Status.Date
		if key > todayKey {
			continue
		}
		green := d.Status.Color == domain.ColorGreen

		switch {
		case key >= weekStart:
			if green {
				p.ThisWeekGreen++
			}
			if d.Status.Color != domain.ColorEmpty {
				done += d.Status.CoreDone
				possible += d.Status.CoreTotal
			}
		case key >= lastWeekStart:
			if green {
				p.LastWeekGreen++
			}
		}

		if green && key >= monthStart {
			p.ThisMonthGreen++
		}
	}

	if possible > 0 {
		p.CoreHitRateWeek = math.Round(float64(done)/float64(possible)*1000) / 10
	}

	return p
}
