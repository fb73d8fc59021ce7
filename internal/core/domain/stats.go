package domain

import (
	"errors"
	"time"
)

var (
	ErrReportNotReady    = errors.New("no report has been computed yet")
	ErrSuperseded        = errors.New("computation superseded by a newer request")
	ErrInvalidDateRange  = errors.New("start_date must not be after end_date")
	ErrDateRangeTooLarge = errors.New("date range too large (max 366 days)")
)

// MaxRangeDays bounds explicit day-status queries.
const MaxRangeDays = 366

type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorEmpty  Color = "empty"
	// ColorPending marks today while it is still open and not yet green.
	ColorPending Color = "pending"
)

// Judged reports whether the color is a final verdict on a committed day.
func (c Color) Judged() bool {
	return c == ColorGreen || c == ColorYellow || c == ColorRed
}

type DayStatus struct {
	Date       string      `json:"date"`
	Color      Color       `json:"color"`
	CoreDone   int         `json:"core_done"`
	CoreTotal  int         `json:"core_total"`
	IsFallback bool        `json:"is_fallback,omitempty"`
	Mode       DayModeKind `json:"mode,omitempty"`
}

// DayRange is a classified civil date range served to calendar views.
type DayRange struct {
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Days      []DayStatus `json:"days"`
}

type PeriodStats struct {
	ThisWeekGreen   int     `json:"this_week_green"`
	LastWeekGreen   int     `json:"last_week_green"`
	ThisMonthGreen  int     `json:"this_month_green"`
	CoreHitRateWeek float64 `json:"core_hit_rate_week"`
}

type StreakSnapshot struct {
	CurrentStreak      int            `json:"current_streak"`
	BestStreak         int            `json:"best_streak"`
	PreviousBestStreak int            `json:"previous_best_streak"`
	TotalGreenDays     int            `json:"total_green_days"`
	DaysSinceLastGreen int            `json:"days_since_last_green"`
	CategoryStreaks    map[string]int `json:"category_streaks"`
	Period             PeriodStats    `json:"period"`
}

// IsNewBest reports whether the live streak is a record beating every earlier run.
func (s StreakSnapshot) IsNewBest() bool {
	return s.CurrentStreak > 0 && s.CurrentStreak == s.BestStreak && s.CurrentStreak > s.PreviousBestStreak
}

type InsightType string

const (
	InsightDayOfWeek      InsightType = "day_of_week"
	InsightMetric         InsightType = "metric_correlation"
	InsightBestHabit      InsightType = "best_habit"
	InsightWorstHabit     InsightType = "worst_habit"
	InsightTrend          InsightType = "trend"
	InsightConsistency    InsightType = "consistency"
	InsightWeekdayWeekend InsightType = "weekday_weekend"
	InsightPerfectWeeks   InsightType = "perfect_weeks"
)

type Insight struct {
	ID    string      `json:"id"`
	Type  InsightType `json:"type"`
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Score int         `json:"score"`
}

// DropStats counts malformed records and habit definitions discarded while
// building a report.
type DropStats struct {
	Habits      int `json:"habits"`
	Completions int `json:"completions"`
	DayModes    int `json:"day_modes"`
	Snoozes     int `json:"snoozes"`
	Metrics     int `json:"metrics"`
}

func (d DropStats) Total() int {
	return d.Habits + d.Completions + d.DayModes + d.Snoozes + d.Metrics
}

type Report struct {
	UserID          string         `json:"user_id"`
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	Today           string         `json:"today"`
	Days            []DayStatus    `json:"days"`
	Streaks         StreakSnapshot `json:"streaks"`
	Insights        []Insight      `json:"insights"`
	MetricAvailable bool           `json:"metric_available"`
	Dropped         DropStats      `json:"dropped"`
	GeneratedAt     time.Time      `json:"generated_at"`
}
