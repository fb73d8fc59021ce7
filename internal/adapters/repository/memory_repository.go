package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

var (
	_ domain.HabitRepository  = (*InMemoryHabitRepository)(nil)
	_ domain.UserRepository   = (*InMemoryUserRepository)(nil)
	_ domain.RecordRepository = (*InMemoryRecordRepository)(nil)
	_ domain.MetricRepository = (*InMemoryMetricRepository)(nil)
)

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

// Create seeds a habit; the habit subsystem owns writes in production.
func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[habit.ID] = habit
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil {
			habits = append(habits, h)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		if habits[i].SortOrder != habits[j].SortOrder {
			return habits[i].SortOrder < habits[j].SortOrder
		}
		return habits[i].ID < habits[j].ID
	})

	return habits, nil
}

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[user.ID] = user
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

type completionKey struct {
	habitID, date string
}

type modeKey struct {
	userID, date string
}

type InMemoryRecordRepository struct {
	completions map[completionKey]domain.Completion
	modes       map[modeKey]domain.DayMode
	snoozes     map[completionKey]domain.Snooze

	mu sync.RWMutex
}

func NewInMemoryRecordRepository() *InMemoryRecordRepository {
	return &InMemoryRecordRepository{
		completions: make(map[completionKey]domain.Completion),
		modes:       make(map[modeKey]domain.DayMode),
		snoozes:     make(map[completionKey]domain.Snooze),
	}
}

func inRange(date, lo, hi string) bool {
	return date >= lo && date <= hi
}

func (r *InMemoryRecordRepository) LoadRange(ctx context.Context, userID string, from, to time.Time) (*domain.RecordSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lo, hi := domain.DateKey(from), domain.DateKey(to)
	set := &domain.RecordSet{}

	for _, c := range r.completions {
		if c.UserID == userID && inRange(c.Date, lo, hi) {
			set.Completions = append(set.Completions, c)
		}
	}
	for _, m := range r.modes {
		if m.UserID == userID && inRange(m.Date, lo, hi) {
			set.DayModes = append(set.DayModes, m)
		}
	}
	for _, s := range r.snoozes {
		if s.UserID == userID && inRange(s.Date, lo, hi) {
			set.Snoozes = append(set.Snoozes, s)
		}
	}

	sort.Slice(set.Completions, func(i, j int) bool {
		if set.Completions[i].Date != set.Completions[j].Date {
			return set.Completions[i].Date < set.Completions[j].Date
		}
		return set.Completions[i].HabitID < set.Completions[j].HabitID
	})
	sort.Slice(set.DayModes, func(i, j int) bool { return set.DayModes[i].Date < set.DayModes[j].Date })
	sort.Slice(set.Snoozes, func(i, j int) bool {
		if set.Snoozes[i].Date != set.Snoozes[j].Date {
			return set.Snoozes[i].Date < set.Snoozes[j].Date
		}
		return set.Snoozes[i].HabitID < set.Snoozes[j].HabitID
	})

	return set, nil
}

func (r *InMemoryRecordRepository) UpsertCompletion(ctx context.Context, c *domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := completionKey{c.HabitID, c.Date}
	if prev, ok := r.completions[key]; ok {
		c.ID = prev.ID
	}
	r.completions[key] = *c
	return nil
}

func (r *InMemoryRecordRepository) UpsertDayMode(ctx context.Context, m *domain.DayMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modes[modeKey{m.UserID, m.Date}] = *m
	return nil
}

func (r *InMemoryRecordRepository) UpsertSnooze(ctx context.Context, s *domain.Snooze) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := completionKey{s.HabitID, s.Date}
	if prev, ok := r.snoozes[key]; ok {
		s.ID = prev.ID
	}
	r.snoozes[key] = *s
	return nil
}

type InMemoryMetricRepository struct {
	samples []domain.MetricSample

	mu sync.RWMutex
}

func NewInMemoryMetricRepository() *InMemoryMetricRepository {
	return &InMemoryMetricRepository{}
}

func (r *InMemoryMetricRepository) Add(samples ...domain.MetricSample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.samples = append(r.samples, samples...)
}

func (r *InMemoryMetricRepository) ListMetric(ctx context.Context, userID, name string, from, to time.Time) ([]domain.MetricSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lo, hi := domain.DateKey(from), domain.DateKey(to)
	var out []domain.MetricSample
	for _, s := range r.samples {
		if s.UserID == userID && s.Name == name && inRange(s.Date, lo, hi) {
			out = append(out, s)
		}
	}
	return out, nil
}
