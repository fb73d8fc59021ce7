package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

// pct returns n/d as a rounded integer percentage. Gates compare these integers
// so that a 20 point threshold is met by exactly 20 points.
func pct(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(d)))
}

type tally struct {
	green, total int
}

func (t *tally) add(green bool) {
	t.total++
	if green {
		t.green++
	}
}

func (t tally) rate() int {
	return pct(t.green, t.total)
}

// judgedDays returns the closed days before today that carry a final verdict.
func judgedDays(days []Day, today time.Time) []Day {
	todayKey := domain.DateKey(today)
	var out []Day
	for _, d := range days {
		if d.Status.Date < todayKey && d.Status.Color.Judged() {
			out = append(out, d)
		}
	}
	return out
}

// ComputeInsights ranks statistical observations about the history. metric maps
// date keys to the external metric value and may be nil when unavailable.
func ComputeInsights(days []Day, habits []*domain.Habit, metric map[string]float64, today time.Time, cfg Config) []domain.Insight {
	cfg = cfg.normalized()
	th := cfg.Insights

	hasCore := false
	for _, h := range habits {
		if h.IsCore && h.IsActive() {
			hasCore = true
			break
		}
	}

	judged := judgedDays(window(days, today, cfg.LookbackDays), today)
	if !hasCore || len(judged) < th.MinJudgedDays {
		return []domain.Insight{}
	}

	var out []domain.Insight
	emit := func(in *domain.Insight) {
		if in != nil {
			out = append(out, *in)
		}
	}

	emit(dayOfWeekInsight(judged, th))
	if metric != nil {
		emit(metricInsight(judged, metric, cfg))
	}
	best, worst := habitInsights(judged, habits, th)
	emit(best)
	emit(worst)
	emit(trendInsight(judged, today, th))
	emit(consistencyInsight(judged))
	emit(weekdayWeekendInsight(judged, th))
	emit(perfectWeeksInsight(judged, th))

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > cfg.MaxInsights {
		out = out[:cfg.MaxInsights]
	}

	return out
}

func clampScore(s int) int {
	return max(0, min(100, s))
}

func dayOfWeekInsight(judged []Day, th InsightThresholds) *domain.Insight {
	var byDay [8]tally
	for _, d := range judged {
		byDay[domain.ISOWeekday(d.Date)].add(d.Status.Color == domain.ColorGreen)
	}

	bestDay, worstDay := 0, 0
	compared := 0
	for wd := 1; wd <= 7; wd++ {
		if byDay[wd].total < th.DayOfWeekMinSamples {
			continue
		}
		compared++
		if bestDay == 0 || byDay[wd].rate() > byDay[bestDay].rate() {
			bestDay = wd
		}
		if worstDay == 0 || byDay[wd].rate() < byDay[worstDay].rate() {
			worstDay = wd
		}
	}
	if compared < 2 {
		return nil
	}

	gap := byDay[bestDay].rate() - byDay[worstDay].rate()
	if gap < th.DayOfWeekMinGap {
		return nil
	}

	return &domain.Insight{
		ID:    "day_of_week",
		Type:  domain.InsightDayOfWeek,
		Title: fmt.Sprintf("%ss are your strongest day", weekdayName(bestDay)),
		Body: fmt.Sprintf("You hit green on %d%% of %ss but only %d%% of %ss.",
			byDay[bestDay].rate(), weekdayName(bestDay), byDay[worstDay].rate(), weekdayName(worstDay)),
		Score: clampScore(gap),
	}
}

func metricInsight(judged []Day, metric map[string]float64, cfg Config) *domain.Insight {
	th := cfg.Insights
	var high, low tally
	for _, d := range judged {
		v, ok := metric[d.Status.Date]
		if !ok {
			continue
		}
		green := d.Status.Color == domain.ColorGreen
		if v >= cfg.MetricThreshold {
			high.add(green)
		} else {
			low.add(green)
		}
	}

	if high.total+low.total < th.MetricMinSamples || high.total < th.MetricMinBucket || low.total < th.MetricMinBucket {
		return nil
	}

	diff := high.rate() - low.rate()
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	if abs < th.MetricMinDiff {
		return nil
	}

	title := fmt.Sprintf("Better days after %s ≥ %g", cfg.MetricName, cfg.MetricThreshold)
	if diff < 0 {
		title = fmt.Sprintf("Better days when %s < %g", cfg.MetricName, cfg.MetricThreshold)
	}

	return &domain.Insight{
		ID:    "metric_correlation",
		Type:  domain.InsightMetric,
		Title: title,
		Body: fmt.Sprintf("Green rate is %d%% when %s ≥ %g and %d%% otherwise.",
			high.rate(), cfg.MetricName, cfg.MetricThreshold, low.rate()),
		Score: clampScore(abs),
	}
}

type habitRate struct {
	habit *domain.Habit
	tally tally
}

func habitInsights(judged []Day, habits []*domain.Habit, th InsightThresholds) (*domain.Insight, *domain.Insight) {
	byID := make(map[string]*habitRate, len(habits))
	for _, h := range habits {
		if h.IsActive() {
			byID[h.ID] = &habitRate{habit: h}
		}
	}

	for _, d := range judged {
		done := make(map[string]bool, len(d.CheckIns))
		for _, ci := range d.CheckIns {
			done[ci.HabitID] = ci.Done
		}
		snoozed := make(map[string]bool, len(d.Snoozed))
		for _, id := range d.Snoozed {
			snoozed[id] = true
		}
		for _, id := range d.InScope {
			if snoozed[id] && !done[id] {
				continue
			}
			if hr, ok := byID[id]; ok {
				hr.tally.add(done[id])
			}
		}
	}

	var qualifying []*habitRate
	for _, hr := range byID {
		if hr.tally.total >= th.HabitMinSamples {
			qualifying = append(qualifying, hr)
		}
	}
	if len(qualifying) < 2 {
		return nil, nil
	}

	sort.Slice(qualifying, func(i, j int) bool {
		ri, rj := qualifying[i].tally.rate(), qualifying[j].tally.rate()
		if ri != rj {
			return ri > rj
		}
		return qualifying[i].habit.Title < qualifying[j].habit.Title
	})

	top := qualifying[0]
	bottom := qualifying[len(qualifying)-1]

	best := &domain.Insight{
		ID:    "best_habit",
		Type:  domain.InsightBestHabit,
		Title: fmt.Sprintf("%s is your most reliable habit", top.habit.Title),
		Body:  fmt.Sprintf("Completed on %d%% of scheduled days.", top.tally.rate()),
		Score: clampScore(top.tally.rate()),
	}

	worstRate := bottom.tally.rate()
	if worstRate >= th.WorstHabitMaxRate || top.tally.rate()-worstRate < th.WorstHabitMinGap {
		return best, nil
	}

	worst := &domain.Insight{
		ID:    "worst_habit",
		Type:  domain.InsightWorstHabit,
		Title: fmt.Sprintf("%s needs attention", bottom.habit.Title),
		Body: fmt.Sprintf("Completed on %d%% of scheduled days, compared to %d%% for %s.",
			worstRate, top.tally.rate(), top.habit.Title),
		Score: clampScore(100 - worstRate),
	}

	return best, worst
}

func trendInsight(judged []Day, today time.Time, th InsightThresholds) *domain.Insight {
	n := th.TrendWindowDays
	recentFrom := domain.DateKey(today.AddDate(0, 0, -n))
	priorFrom := domain.DateKey(today.AddDate(0, 0, -2*n))

	var recent, prior tally
	for _, d := range judged {
		key := d.Status.Date
		green := d.Status.Color == domain.ColorGreen
		switch {
		case key >= recentFrom:
			recent.add(green)
		case key >= priorFrom:
			prior.add(green)
		}
	}

	if prior.total < th.TrendMinPrior || recent.total == 0 {
		return nil
	}

	delta := recent.rate() - prior.rate()
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	if abs < th.TrendMinDelta {
		return nil
	}

	in := &domain.Insight{
		Type:  domain.InsightTrend,
		Score: clampScore(abs),
	}
	if delta > 0 {
		in.ID = "trend_improving"
		in.Title = "You're trending up"
		in.Body = fmt.Sprintf("Green rate rose from %d%% to %d%% over the last %d days.", prior.rate(), recent.rate(), n)
	} else {
		in.ID = "trend_declining"
		in.Title = "Your consistency is slipping"
		in.Body = fmt.Sprintf("Green rate fell from %d%% to %d%% over the last %d days.", prior.rate(), recent.rate(), n)
	}
	return in
}

func consistencyInsight(judged []Day) *domain.Insight {
	var all tally
	for _, d := range judged {
		all.add(d.Status.Color == domain.ColorGreen)
	}
	rate := all.rate()

	var title string
	switch {
	case rate >= 80:
		title = "Rock-solid consistency"
	case rate >= 60:
		title = "Steady consistency"
	default:
		title = "Room to build consistency"
	}

	return &domain.Insight{
		ID:    "consistency",
		Type:  domain.InsightConsistency,
		Title: title,
		Body:  fmt.Sprintf("%d of your last %d tracked days were green (%d%%).", all.green, all.total, rate),
		Score: clampScore(rate),
	}
}

func weekdayWeekendInsight(judged []Day, th InsightThresholds) *domain.Insight {
	var weekday, weekend tally
	for _, d := range judged {
		green := d.Status.Color == domain.ColorGreen
		if domain.ISOWeekday(d.Date) >= 6 {
			weekend.add(green)
		} else {
			weekday.add(green)
		}
	}

	if weekday.total < th.WeekdayMinSamples || weekend.total < th.WeekendMinSamples {
		return nil
	}

	diff := weekday.rate() - weekend.rate()
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	if abs < th.WeekdayWeekendMinGap {
		return nil
	}

	title := "Weekends throw you off"
	if diff < 0 {
		title = "Weekdays are your weak spot"
	}

	return &domain.Insight{
		ID:    "weekday_weekend",
		Type:  domain.InsightWeekdayWeekend,
		Title: title,
		Body:  fmt.Sprintf("Green rate is %d%% on weekdays and %d%% on weekends.", weekday.rate(), weekend.rate()),
		Score: clampScore(abs),
	}
}

func perfectWeeksInsight(judged []Day, th InsightThresholds) *domain.Insight {
	weeks := make(map[string]*tally)
	for _, d := range judged {
		key := domain.DateKey(domain.WeekStart(d.Date))
		t, ok := weeks[key]
		if !ok {
			t = &tally{}
			weeks[key] = t
		}
		t.add(d.Status.Color == domain.ColorGreen)
	}

	count := 0
	for _, t := range weeks {
		if t.total >= th.PerfectWeekMinDays && t.green == t.total {
			count++
		}
	}
	if count == 0 {
		return nil
	}

	noun := "weeks"
	if count == 1 {
		noun = "week"
	}

	return &domain.Insight{
		ID:    "perfect_weeks",
		Type:  domain.InsightPerfectWeeks,
		Title: fmt.Sprintf("%d perfect %s", count, noun),
		Body:  "Every tracked day of those weeks was green.",
		Score: clampScore(count * th.PerfectWeekScore),
	}
}

func weekdayName(iso int) string {
	return time.Weekday(iso % 7).String()
}
