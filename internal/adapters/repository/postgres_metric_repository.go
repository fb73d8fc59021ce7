package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

var _ domain.MetricRepository = (*PostgresMetricRepository)(nil)

// PostgresMetricRepository reads samples written by the health-data importer.
type PostgresMetricRepository struct {
	db *sqlx.DB
}

func NewPostgresMetricRepository(db *sqlx.DB) *PostgresMetricRepository {
	return &PostgresMetricRepository{db: db}
}

func (r *PostgresMetricRepository) ListMetric(ctx context.Context, userID, name string, from, to time.Time) ([]domain.MetricSample, error) {
	query := `
        SELECT user_id, metric_name, to_char(metric_date, 'YYYY-MM-DD') AS metric_date, value
        FROM metric_samples
        WHERE user_id = $1 AND metric_name = $2 AND metric_date BETWEEN $3 AND $4
        ORDER BY metric_date ASC`

	var samples []domain.MetricSample
	if err := r.db.SelectContext(ctx, &samples, query, userID, name, domain.DateKey(from), domain.DateKey(to)); err != nil {
		return nil, fmt.Errorf("list metric %s: %w", name, err)
	}

	return samples, nil
}
