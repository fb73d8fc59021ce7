package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

type MockHabitRepo struct {
	mock.Mock
}

func (m *MockHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

type MockRecordRepo struct {
	mock.Mock
}

func (m *MockRecordRepo) LoadRange(ctx context.Context, userID string, from, to time.Time) (*domain.RecordSet, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecordSet), args.Error(1)
}

func (m *MockRecordRepo) UpsertCompletion(ctx context.Context, c *domain.Completion) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRecordRepo) UpsertDayMode(ctx context.Context, dm *domain.DayMode) error {
	return m.Called(ctx, dm).Error(0)
}

func (m *MockRecordRepo) UpsertSnooze(ctx context.Context, s *domain.Snooze) error {
	return m.Called(ctx, s).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockMetricRepo struct {
	mock.Mock
}

func (m *MockMetricRepo) ListMetric(ctx context.Context, userID, name string, from, to time.Time) ([]domain.MetricSample, error) {
	args := m.Called(ctx, userID, name, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MetricSample), args.Error(1)
}

type MockHabitCache struct {
	mock.Mock
}

func (m *MockHabitCache) Invalidate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
