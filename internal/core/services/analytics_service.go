package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

type inflight struct {
	gen    uint64
	cancel context.CancelFunc
}

type AnalyticsService struct {
	engine     *analytics.Engine
	habitRepo  domain.HabitRepository
	recordRepo domain.RecordRepository
	userRepo   domain.UserRepository
	metricRepo domain.MetricRepository
	now        func() time.Time

	mu      sync.Mutex
	gen     uint64
	running map[string]inflight
	reports map[string]*domain.Report
}

// NewAnalyticsService wires the engine to its repositories. metricRepo may be nil
// when no health-data source is configured.
func NewAnalyticsService(
	engine *analytics.Engine,
	habitRepo domain.HabitRepository,
	recordRepo domain.RecordRepository,
	userRepo domain.UserRepository,
	metricRepo domain.MetricRepository,
) *AnalyticsService {
	return &AnalyticsService{
		engine:     engine,
		habitRepo:  habitRepo,
		recordRepo: recordRepo,
		userRepo:   userRepo,
		metricRepo: metricRepo,
		now:        time.Now,
		running:    make(map[string]inflight),
		reports:    make(map[string]*domain.Report),
	}
}

// SetClock replaces the wall clock used to determine "today". It is safe to
// call while computations are running.
func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *AnalyticsService) clock() time.Time {
	s.mu.Lock()
	now := s.now
	s.mu.Unlock()
	return now()
}

type snapshot struct {
	user      *domain.User
	habits    []*domain.Habit
	records   *domain.RecordSet
	metric    []domain.MetricSample
	hasMetric bool
}

// load fetches everything a computation needs concurrently. The bounds are widened
// by one day on each side so the user's local dates are covered whatever the timezone.
func (s *AnalyticsService) load(ctx context.Context, userID string, from, to time.Time) (*snapshot, error) {
	lo, hi := from.AddDate(0, 0, -1), to.AddDate(0, 0, 1)
	snap := &snapshot{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := s.userRepo.GetByID(gctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		snap.user = user
		return nil
	})

	g.Go(func() error {
		habits, err := s.habitRepo.ListByUserID(gctx, userID)
		if err != nil {
			return fmt.Errorf("load habits: %w", err)
		}
		snap.habits = habits
		return nil
	})

	g.Go(func() error {
		records, err := s.recordRepo.LoadRange(gctx, userID, lo, hi)
		if err != nil {
			return fmt.Errorf("load records: %w", err)
		}
		snap.records = records
		return nil
	})

	if s.metricRepo != nil {
		name := s.engine.Config().MetricName
		g.Go(func() error {
			samples, err := s.metricRepo.ListMetric(gctx, userID, name, lo, hi)
			if err != nil {
				if gctx.Err() == nil {
					log.Warn().Err(err).Str("user_id", userID).Str("metric", name).Msg("metric unavailable, skipping correlation")
				}
				return nil
			}
			snap.metric = samples
			snap.hasMetric = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if snap.records == nil {
		snap.records = &domain.RecordSet{}
	}

	return snap, nil
}

type cleaned struct {
	habits  []*domain.Habit
	records domain.RecordSet
	metric  map[string]float64
	dropped domain.DropStats
}

// sanitize drops habit definitions and records that fail validation and counts
// them per kind.
func sanitize(snap *snapshot) cleaned {
	var out cleaned
	dropped := &out.dropped

	for _, h := range snap.habits {
		n, err := h.Normalized()
		if err != nil {
			dropped.Habits++
			continue
		}
		out.habits = append(out.habits, n)
	}

	rs := snap.records
	clean := &out.records

	for i := range rs.Completions {
		if rs.Completions[i].Validate() != nil {
			dropped.Completions++
			continue
		}
		clean.Completions = append(clean.Completions, rs.Completions[i])
	}
	for i := range rs.DayModes {
		if rs.DayModes[i].Validate() != nil {
			dropped.DayModes++
			continue
		}
		clean.DayModes = append(clean.DayModes, rs.DayModes[i])
	}
	for i := range rs.Snoozes {
		if rs.Snoozes[i].Validate() != nil {
			dropped.Snoozes++
			continue
		}
		clean.Snoozes = append(clean.Snoozes, rs.Snoozes[i])
	}

	if !snap.hasMetric {
		return out
	}

	out.metric = make(map[string]float64, len(snap.metric))
	for _, m := range snap.metric {
		if m.Validate() != nil {
			dropped.Metrics++
			continue
		}
		out.metric[m.Date] = m.Value
	}

	return out
}

func (s *AnalyticsService) input(snap *snapshot, c cleaned, from, to, today, now time.Time) analytics.HistoryInput {
	return analytics.HistoryInput{
		Habits:       c.habits,
		Records:      c.records,
		From:         from,
		To:           to,
		Today:        today,
		Now:          now,
		AccountStart: snap.user.AccountStart(),
	}
}

// Compute builds a fresh report over the lookback window ending on the user's
// local today. It does not touch the committed report.
func (s *AnalyticsService) Compute(ctx context.Context, userID string) (*domain.Report, error) {
	now := s.clock()
	lookback := s.engine.Config().LookbackDays

	approx := domain.CivilDate(now, time.UTC)
	snap, err := s.load(ctx, userID, approx.AddDate(0, 0, -(lookback-1)), approx)
	if err != nil {
		return nil, err
	}

	if _, err := snap.user.LoadLocation(); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("falling back to UTC")
	}
	today := domain.CivilDate(now, snap.user.Location())
	from := today.AddDate(0, 0, -(lookback - 1))

	c := sanitize(snap)
	dropped := c.dropped
	if dropped.Total() > 0 {
		log.Warn().
			Str("user_id", userID).
			Int("habits", dropped.Habits).
			Int("completions", dropped.Completions).
			Int("day_modes", dropped.DayModes).
			Int("snoozes", dropped.Snoozes).
			Int("metrics", dropped.Metrics).
			Msg("dropped malformed records")
	}

	res := s.engine.Run(s.input(snap, c, from, today, today, now), c.metric)

	return &domain.Report{
		UserID:          userID,
		StartDate:       domain.DateKey(from),
		EndDate:         domain.DateKey(today),
		Today:           domain.DateKey(today),
		Days:            res.Days,
		Streaks:         res.Streaks,
		Insights:        res.Insights,
		MetricAvailable: snap.hasMetric,
		Dropped:         dropped,
		GeneratedAt:     now.UTC(),
	}, nil
}

// Refresh computes a report and commits it as the user's latest. Starting a new
// refresh cancels the one in flight for the same user, which then returns
// domain.ErrSuperseded without committing anything.
func (s *AnalyticsService) Refresh(ctx context.Context, userID string) (*domain.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if prev, ok := s.running[userID]; ok {
		prev.cancel()
	}
	s.gen++
	gen := s.gen
	s.running[userID] = inflight{gen: gen, cancel: cancel}
	s.mu.Unlock()

	report, err := s.Compute(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.running[userID]
	if !ok || cur.gen != gen {
		return nil, domain.ErrSuperseded
	}
	delete(s.running, userID)

	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.reports[userID] = report

	evt := log.Info().
		Str("user_id", userID).
		Int("current_streak", report.Streaks.CurrentStreak).
		Int("insights", len(report.Insights))
	if report.Streaks.IsNewBest() {
		evt = evt.Bool("new_best", true)
	}
	evt.Msg("analytics report refreshed")

	return report, nil
}

// Latest returns the last committed report of the user.
func (s *AnalyticsService) Latest(userID string) (*domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[userID]
	if !ok {
		return nil, domain.ErrReportNotReady
	}
	return report, nil
}

// Days classifies an explicit civil date range for calendar views. A zero end
// defaults to the user's local today and a zero start to six days before the end.
func (s *AnalyticsService) Days(ctx context.Context, userID string, from, to time.Time) (*domain.DayRange, error) {
	now := s.clock()

	if from.IsZero() || to.IsZero() {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load user: %w", err)
		}
		if to.IsZero() {
			to = domain.CivilDate(now, user.Location())
		}
		if from.IsZero() {
			from = to.AddDate(0, 0, -6)
		}
	}

	if to.Before(from) {
		return nil, domain.ErrInvalidDateRange
	}
	if domain.DaysBetween(from, to)+1 > domain.MaxRangeDays {
		return nil, domain.ErrDateRangeTooLarge
	}

	snap, err := s.load(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	today := domain.CivilDate(now, snap.user.Location())
	c := sanitize(snap)
	c.metric = nil

	return &domain.DayRange{
		StartDate: domain.DateKey(from),
		EndDate:   domain.DateKey(to),
		Days:      s.engine.Classify(s.input(snap, c, from, to, today, now)),
	}, nil
}
