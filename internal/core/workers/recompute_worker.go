package workers

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

const queueSize = 100

type Refresher interface {
	Refresh(ctx context.Context, userID string) (*domain.Report, error)
}

type RecomputeJob struct {
	UserID string
}

// RecomputeWorker rebuilds a user's report in the background whenever their
// records change.
type RecomputeWorker struct {
	refresher Refresher
	jobs      chan RecomputeJob
}

func NewRecomputeWorker(refresher Refresher) *RecomputeWorker {
	return &RecomputeWorker{
		refresher: refresher,
		jobs:      make(chan RecomputeJob, queueSize),
	}
}

func (w *RecomputeWorker) Start(ctx context.Context) {
	go func() {
		log.Info().Msg("recompute worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Info().Msg("recompute worker shutting down")
				return
			}
		}
	}()
}

// Enqueue never blocks: when the queue is full the job is dropped.
func (w *RecomputeWorker) Enqueue(userID string) {
	select {
	case w.jobs <- RecomputeJob{UserID: userID}:
	default:
		log.Warn().Str("user_id", userID).Msg("recompute queue full, dropping job")
	}
}

// Pending reports how many jobs are waiting in the queue.
func (w *RecomputeWorker) Pending() int {
	return len(w.jobs)
}

func (w *RecomputeWorker) processJob(ctx context.Context, job RecomputeJob) {
	report, err := w.refresher.Refresh(ctx, job.UserID)
	switch {
	case errors.Is(err, domain.ErrSuperseded), errors.Is(err, context.Canceled):
		log.Debug().Str("user_id", job.UserID).Msg("recompute superseded")
	case err != nil:
		log.Error().Err(err).Str("user_id", job.UserID).Msg("recompute failed")
	default:
		log.Debug().Str("user_id", job.UserID).Int("days", len(report.Days)).Msg("recompute done")
	}
}
