package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/workers"
)

// HabitCache drops cached habit lists when the habit subsystem reports an edit.
type HabitCache interface {
	Invalidate(ctx context.Context, userID string) error
}

type RecordService struct {
	repo      domain.RecordRepository
	habitRepo domain.HabitRepository
	worker    *workers.RecomputeWorker
	cache     HabitCache
}

// NewRecordService builds the write path. cache may be nil when habits are not cached.
func NewRecordService(repo domain.RecordRepository, habitRepo domain.HabitRepository, worker *workers.RecomputeWorker, cache HabitCache) *RecordService {
	return &RecordService{
		repo:      repo,
		habitRepo: habitRepo,
		worker:    worker,
		cache:     cache,
	}
}

type SetCompletionInput struct {
	UserID  string
	HabitID string
	Date    string
	Value   int
}

type SetDayModeInput struct {
	UserID string
	Date   string
	Mode   domain.DayModeKind
}

type SnoozeInput struct {
	UserID       string
	HabitID      string
	Date         string
	SnoozedUntil time.Time
}

func (s *RecordService) checkOwnership(ctx context.Context, habitID, userID string) error {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return err
	}
	if habit.UserID != userID {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *RecordService) SetCompletion(ctx context.Context, input SetCompletionInput) (*domain.Completion, error) {
	c := &domain.Completion{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		HabitID:   input.HabitID,
		Date:      input.Date,
		Value:     input.Value,
		UpdatedAt: time.Now().UTC(),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkOwnership(ctx, c.HabitID, c.UserID); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertCompletion(ctx, c); err != nil {
		return nil, err
	}

	s.worker.Enqueue(c.UserID)

	return c, nil
}

func (s *RecordService) SetDayMode(ctx context.Context, input SetDayModeInput) (*domain.DayMode, error) {
	m := &domain.DayMode{
		UserID:    input.UserID,
		Date:      input.Date,
		Mode:      input.Mode,
		UpdatedAt: time.Now().UTC(),
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertDayMode(ctx, m); err != nil {
		return nil, err
	}

	s.worker.Enqueue(m.UserID)

	return m, nil
}

func (s *RecordService) Snooze(ctx context.Context, input SnoozeInput) (*domain.Snooze, error) {
	sn := &domain.Snooze{
		ID:           uuid.New().String(),
		UserID:       input.UserID,
		HabitID:      input.HabitID,
		Date:         input.Date,
		SnoozedUntil: input.SnoozedUntil.UTC(),
	}

	if err := sn.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkOwnership(ctx, sn.HabitID, sn.UserID); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertSnooze(ctx, sn); err != nil {
		return nil, err
	}

	s.worker.Enqueue(sn.UserID)

	return sn, nil
}

// NotifyChange handles "habit edited" and "day advanced" signals from collaborators.
func (s *RecordService) NotifyChange(ctx context.Context, userID string, kind domain.ChangeKind) error {
	if !kind.Valid() {
		return domain.ErrInvalidChange
	}

	if kind == domain.ChangeHabit && s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("failed to invalidate habit cache")
		}
	}

	s.worker.Enqueue(userID)

	return nil
}
