package analytics

import (
	"strings"
	"unicode"
)

// PendingPolicy decides how today is reported while it is still open and not green.
type PendingPolicy string

const (
	// PendingOverridesGrade reports today as pending whenever a core habit is still
	// missing. Travel/sick relaxation is only applied once the day has elapsed.
	PendingOverridesGrade PendingPolicy = "overrides_grade"

	// PendingOverridesRed grades today with synonyms and relaxed thresholds first and
	// only turns a red grade into pending. Yellow is shown as graded.
	PendingOverridesRed PendingPolicy = "overrides_red"
)

func (p PendingPolicy) Valid() bool {
	return p == PendingOverridesGrade || p == PendingOverridesRed
}

// KeywordSet matches habit labels case-insensitively on word starts: a keyword
// matches when the label contains it at the beginning of a word, so "run" matches
// "Morning run" and "Running" but not "Brunch". Multi-word keywords such as
// "wind down" must appear as consecutive words.
type KeywordSet []string

func (k KeywordSet) Match(label string) bool {
	l := " " + words(label)
	for _, kw := range k {
		kw = words(kw)
		if kw != "" && strings.Contains(l, " "+kw) {
			return true
		}
	}
	return false
}

// words lowercases s and joins its letter and digit runs with single spaces.
func words(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}), " ")
}

// Category groups habits for category streaks (movement, mind, sleep...).
type Category struct {
	Name     string
	Keywords KeywordSet
}

// SynonymGroup collapses substitutable habits into one requirement: a core habit
// matching Members is satisfied by any done habit of the day matching Substitutes.
type SynonymGroup struct {
	Name        string
	Members     KeywordSet
	Substitutes KeywordSet
}

type InsightThresholds struct {
	MinJudgedDays int

	DayOfWeekMinSamples int
	DayOfWeekMinGap     int

	MetricMinSamples int
	MetricMinBucket  int
	MetricMinDiff    int

	HabitMinSamples   int
	WorstHabitMaxRate int
	WorstHabitMinGap  int

	TrendWindowDays int
	TrendMinPrior   int
	TrendMinDelta   int

	WeekdayMinSamples    int
	WeekendMinSamples    int
	WeekdayWeekendMinGap int

	PerfectWeekMinDays int
	PerfectWeekScore   int
}

type Config struct {
	LookbackDays    int
	Pending         PendingPolicy
	Categories      []Category
	Synonyms        []SynonymGroup
	MetricName      string
	MetricThreshold float64
	MaxInsights     int
	Insights        InsightThresholds
}

const (
	DefaultLookbackDays = 90
	MaxInsights         = 6
)

func DefaultThresholds() InsightThresholds {
	return InsightThresholds{
		MinJudgedDays:        7,
		DayOfWeekMinSamples:  2,
		DayOfWeekMinGap:      20,
		MetricMinSamples:     10,
		MetricMinBucket:      3,
		MetricMinDiff:        15,
		HabitMinSamples:      7,
		WorstHabitMaxRate:    70,
		WorstHabitMinGap:     20,
		TrendWindowDays:      14,
		TrendMinPrior:        7,
		TrendMinDelta:        10,
		WeekdayMinSamples:    5,
		WeekendMinSamples:    3,
		WeekdayWeekendMinGap: 20,
		PerfectWeekMinDays:   5,
		PerfectWeekScore:     15,
	}
}

func DefaultCategories() []Category {
	return []Category{
		{Name: "movement", Keywords: KeywordSet{"workout", "rowing", "run", "walk", "gym", "yoga", "swim", "bike", "stretch"}},
		{Name: "mind", Keywords: KeywordSet{"meditat", "read", "journal", "breath", "gratitude"}},
		{Name: "sleep", Keywords: KeywordSet{"sleep", "bed", "wind down"}},
	}
}

func DefaultSynonyms() []SynonymGroup {
	return []SynonymGroup{
		{Name: "workout", Members: KeywordSet{"workout"}, Substitutes: KeywordSet{"workout", "rowing"}},
	}
}

func DefaultConfig() Config {
	return Config{
		LookbackDays:    DefaultLookbackDays,
		Pending:         PendingOverridesGrade,
		Categories:      DefaultCategories(),
		Synonyms:        DefaultSynonyms(),
		MetricName:      "sleep_hours",
		MetricThreshold: 7,
		MaxInsights:     MaxInsights,
		Insights:        DefaultThresholds(),
	}
}

// normalized fills zero values so a partially built Config behaves like the defaults.
func (c Config) normalized() Config {
	if c.LookbackDays <= 0 {
		c.LookbackDays = DefaultLookbackDays
	}
	if !c.Pending.Valid() {
		c.Pending = PendingOverridesGrade
	}
	if c.MaxInsights <= 0 || c.MaxInsights > MaxInsights {
		c.MaxInsights = MaxInsights
	}
	if c.Insights == (InsightThresholds{}) {
		c.Insights = DefaultThresholds()
	}
	return c
}
