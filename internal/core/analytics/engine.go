// Package analytics turns habit records into day colors, streaks and insights.
// Everything here is pure: no I/O, no clock reads, no shared state.
package analytics

import (
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

type Engine struct {
	cfg        Config
	classifier *Classifier
}

func NewEngine(cfg Config) *Engine {
	cfg = cfg.normalized()
	return &Engine{
		cfg:        cfg,
		classifier: NewClassifier(cfg),
	}
}

func (e *Engine) Config() Config {
	return e.cfg
}

type Result struct {
	Days     []domain.DayStatus
	Streaks  domain.StreakSnapshot
	Insights []domain.Insight
}

// Classify returns the day statuses of the input range without aggregates.
func (e *Engine) Classify(in HistoryInput) []domain.DayStatus {
	return statuses(e.classifier.History(in))
}

// Run classifies the input range and derives streaks and insights from it.
// metric may be nil when the external metric is unavailable.
func (e *Engine) Run(in HistoryInput, metric map[string]float64) Result {
	days := e.classifier.History(in)

	return Result{
		Days:     statuses(days),
		Streaks:  ComputeStreaks(days, in.Today, e.cfg),
		Insights: ComputeInsights(days, in.Habits, metric, in.Today, e.cfg),
	}
}

func statuses(days []Day) []domain.DayStatus {
	out := make([]domain.DayStatus, len(days))
	for i, d := range days {
		out[i] = d.Status
	}
	return out
}
