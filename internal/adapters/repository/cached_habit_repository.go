package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const habitCacheTTL = 30 * time.Minute

// CachedHabitRepository keeps each user's habit list in Redis. Habits are
// written by another subsystem, so entries expire on their own and are dropped
// early through Invalidate when a change is signalled.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *redis.Client
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client) *CachedHabitRepository {
	return &CachedHabitRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedHabitRepository) cacheKey(userID string) string {
	return fmt.Sprintf("habits:%s", userID)
}

func (r *CachedHabitRepository) Invalidate(ctx context.Context, userID string) error {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate habits of %s: %w", userID, err)
	}
	return nil
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Bytes()
	if err == nil {
		var habits []*domain.Habit
		if err := json.Unmarshal(val, &habits); err == nil {
			return habits, nil
		}

		log.Warn().Str("user_id", userID).Msg("corrupted habit cache entry, cleaning up key")
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msg("redis read error")
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		if setErr := r.cache.Set(ctx, key, data, habitCacheTTL).Err(); setErr != nil {
			log.Warn().Err(setErr).Msg("redis set error")
		}
	}

	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}
