package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Schema creates the tables read by the engine. Habits and users are owned by
// other subsystems; they are created here so a fresh database is usable.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    email      TEXT NOT NULL UNIQUE,
    timezone   TEXT NOT NULL DEFAULT 'UTC',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS habits (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title       TEXT NOT NULL,
    is_core     BOOLEAN NOT NULL DEFAULT FALSE,
    sort_order  INT NOT NULL DEFAULT 0,
    weekdays    INT[],
    start_date  DATE NOT NULL,
    version     INT NOT NULL DEFAULT 1,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    archived_at TIMESTAMPTZ,
    deleted_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS habit_completions (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    habit_id        TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
    completion_date DATE NOT NULL,
    value           INT NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (habit_id, completion_date)
);
CREATE INDEX IF NOT EXISTS idx_completions_user_date ON habit_completions (user_id, completion_date);

CREATE TABLE IF NOT EXISTS day_modes (
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    mode_date  DATE NOT NULL,
    mode       TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, mode_date)
);

CREATE TABLE IF NOT EXISTS habit_snoozes (
    id            TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    habit_id      TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
    snooze_date   DATE NOT NULL,
    snoozed_until TIMESTAMPTZ NOT NULL,
    UNIQUE (habit_id, snooze_date)
);
CREATE INDEX IF NOT EXISTS idx_snoozes_user_date ON habit_snoozes (user_id, snooze_date);

CREATE TABLE IF NOT EXISTS metric_samples (
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    metric_name TEXT NOT NULL,
    metric_date DATE NOT NULL,
    value       DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (user_id, metric_name, metric_date)
);
`

func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const codeForeignKeyViolation = "23503"

// isForeignKeyViolation recognises the error from both pgx and lib/pq drivers.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeForeignKeyViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == codeForeignKeyViolation
	}
	return false
}
