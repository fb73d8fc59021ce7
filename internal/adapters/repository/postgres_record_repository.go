package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

var _ domain.RecordRepository = (*PostgresRecordRepository)(nil)

type PostgresRecordRepository struct {
	db *sqlx.DB
}

func NewPostgresRecordRepository(db *sqlx.DB) *PostgresRecordRepository {
	return &PostgresRecordRepository{db: db}
}

// LoadRange reads the three record kinds in one read-only transaction so they
// come from the same snapshot.
func (r *PostgresRecordRepository) LoadRange(ctx context.Context, userID string, from, to time.Time) (*domain.RecordSet, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	lo, hi := domain.DateKey(from), domain.DateKey(to)
	set := &domain.RecordSet{}

	completions := `
        SELECT id, user_id, habit_id, to_char(completion_date, 'YYYY-MM-DD') AS completion_date, value, updated_at
        FROM habit_completions
        WHERE user_id = $1 AND completion_date BETWEEN $2 AND $3
        ORDER BY completion_date ASC, updated_at ASC`
	if err := tx.SelectContext(ctx, &set.Completions, completions, userID, lo, hi); err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}

	modes := `
        SELECT user_id, to_char(mode_date, 'YYYY-MM-DD') AS mode_date, mode, updated_at
        FROM day_modes
        WHERE user_id = $1 AND mode_date BETWEEN $2 AND $3
        ORDER BY mode_date ASC`
	if err := tx.SelectContext(ctx, &set.DayModes, modes, userID, lo, hi); err != nil {
		return nil, fmt.Errorf("load day modes: %w", err)
	}

	snoozes := `
        SELECT id, user_id, habit_id, to_char(snooze_date, 'YYYY-MM-DD') AS snooze_date, snoozed_until
        FROM habit_snoozes
        WHERE user_id = $1 AND snooze_date BETWEEN $2 AND $3
        ORDER BY snooze_date ASC`
	if err := tx.SelectContext(ctx, &set.Snoozes, snoozes, userID, lo, hi); err != nil {
		return nil, fmt.Errorf("load snoozes: %w", err)
	}

	return set, nil
}

func (r *PostgresRecordRepository) UpsertCompletion(ctx context.Context, c *domain.Completion) error {
	query := `
        INSERT INTO habit_completions (id, user_id, habit_id, completion_date, value, updated_at)
        VALUES (:id, :user_id, :habit_id, :completion_date, :value, :updated_at)
        ON CONFLICT (habit_id, completion_date)
        DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrHabitNotFound
		}
		return fmt.Errorf("upsert completion: %w", err)
	}
	return nil
}

func (r *PostgresRecordRepository) UpsertDayMode(ctx context.Context, m *domain.DayMode) error {
	query := `
        INSERT INTO day_modes (user_id, mode_date, mode, updated_at)
        VALUES (:user_id, :mode_date, :mode, :updated_at)
        ON CONFLICT (user_id, mode_date)
        DO UPDATE SET mode = EXCLUDED.mode, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("upsert day mode: %w", err)
	}
	return nil
}

func (r *PostgresRecordRepository) UpsertSnooze(ctx context.Context, s *domain.Snooze) error {
	query := `
        INSERT INTO habit_snoozes (id, user_id, habit_id, snooze_date, snoozed_until)
        VALUES (:id, :user_id, :habit_id, :snooze_date, :snoozed_until)
        ON CONFLICT (habit_id, snooze_date)
        DO UPDATE SET snoozed_until = EXCLUDED.snoozed_until`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrHabitNotFound
		}
		return fmt.Errorf("upsert snooze: %w", err)
	}
	return nil
}
