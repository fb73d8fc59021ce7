package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

var _ domain.HabitRepository = (*PostgresHabitRepository)(nil)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

const habitColumns = `id, user_id, title, is_core, sort_order, weekdays, start_date,
            version, created_at, updated_at, archived_at, deleted_at`

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var weekdays pq.Int64Array

	err := row.Scan(
		&h.ID, &h.UserID, &h.Title, &h.IsCore, &h.SortOrder, &weekdays, &h.StartDate,
		&h.Version, &h.CreatedAt, &h.UpdatedAt, &h.ArchivedAt, &h.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, d := range weekdays {
		h.Weekdays = append(h.Weekdays, int(d))
	}
	h.StartDate = domain.CivilDate(h.StartDate, nil)

	return &h, nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND deleted_at IS NULL`

	h, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY sort_order ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit
	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}
