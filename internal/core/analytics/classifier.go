package analytics

import (
	"time"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

// CheckIn is a completion of the day resolved against its habit label.
type CheckIn struct {
	HabitID string
	Label   string
	Done    bool
}

type DayInput struct {
	Date         time.Time
	Scope        Scope
	CheckIns     []CheckIn
	Mode         domain.DayModeKind
	AccountStart time.Time
	Today        time.Time
}

type Classifier struct {
	synonyms []SynonymGroup
	pending  PendingPolicy
}

func NewClassifier(cfg Config) *Classifier {
	cfg = cfg.normalized()
	return &Classifier{
		synonyms: cfg.Synonyms,
		pending:  cfg.Pending,
	}
}

// Classify computes the status of one day. It is a pure function of its input.
func (c *Classifier) Classify(in DayInput) domain.DayStatus {
	mode := in.Mode
	if mode == "" {
		mode = domain.ModeNormal
	}

	status := domain.DayStatus{
		Date:       domain.DateKey(in.Date),
		Color:      domain.ColorEmpty,
		IsFallback: in.Scope.IsFallback,
		Mode:       mode,
	}

	core := in.Scope.Core()
	if len(core) == 0 {
		return status
	}

	key := status.Date
	if key < domain.DateKey(in.AccountStart) || key > domain.DateKey(in.Today) {
		return status
	}

	missing := c.Missing(core, in.CheckIns)
	status.CoreTotal = len(core)
	status.CoreDone = len(core) - len(missing)

	graded := grade(len(missing), mode.Relaxed())
	if key != domain.DateKey(in.Today) || graded == domain.ColorGreen {
		status.Color = graded
		return status
	}

	switch c.pending {
	case PendingOverridesRed:
		if graded == domain.ColorRed {
			status.Color = domain.ColorPending
		} else {
			status.Color = graded
		}
	default:
		status.Color = domain.ColorPending
	}

	return status
}

// Missing returns the core habits that are not satisfied by the day's check-ins.
func (c *Classifier) Missing(core []*domain.Habit, checkIns []CheckIn) []*domain.Habit {
	done := make(map[string]bool, len(checkIns))
	for _, ci := range checkIns {
		if ci.Done {
			done[ci.HabitID] = true
		}
	}

	var missing []*domain.Habit
	for _, h := range core {
		if done[h.ID] || c.satisfiedBySynonym(h, checkIns) {
			continue
		}
		missing = append(missing, h)
	}
	return missing
}

func (c *Classifier) satisfiedBySynonym(h *domain.Habit, checkIns []CheckIn) bool {
	for _, g := range c.synonyms {
		if !g.Members.Match(h.Title) {
			continue
		}
		for _, ci := range checkIns {
			if ci.HabitID != h.ID && ci.Done && g.Substitutes.Match(ci.Label) {
				return true
			}
		}
	}
	return false
}

func grade(missing int, relaxed bool) domain.Color {
	allowed := 1
	if relaxed {
		allowed = 2
	}

	switch {
	case missing == 0:
		return domain.ColorGreen
	case missing <= allowed:
		return domain.ColorYellow
	default:
		return domain.ColorRed
	}
}
