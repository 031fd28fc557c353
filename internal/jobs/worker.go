package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/facelens-app/facelens/internal/service"
)

// Reclusterer runs a full cluster rebuild for a group
type Reclusterer interface {
	Recluster(ctx context.Context, groupID, requestedBy uuid.UUID) (*service.ReclusterSummary, error)
}

// Worker polls the job queue and runs pending recluster requests one
// at a time. Per-group exclusion is handled by the recluster use case
// itself via the advisory lock.
type Worker struct {
	queue       *Queue
	reclusterer Reclusterer
	logger      *slog.Logger
	interval    time.Duration
}

func NewWorker(queue *Queue, reclusterer Reclusterer, logger *slog.Logger, interval time.Duration) *Worker {
	return &Worker{
		queue:       queue,
		reclusterer: reclusterer,
		logger:      logger,
		interval:    interval,
	}
}

// Run starts the worker loop
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("cluster job worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cluster job worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain claims and runs jobs until the queue is empty
func (w *Worker) drain(ctx context.Context) {
	for {
		job, err := w.queue.ClaimNext(ctx)
		if err != nil {
			w.logger.Error("failed to claim job", "error", err)
			return
		}
		if job == nil {
			return
		}

		w.runJob(ctx, job)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (w *Worker) runJob(ctx context.Context, job *Job) {
	w.logger.Info("running cluster job",
		"job_id", job.ID,
		"group_id", job.GroupID,
	)

	summary, err := w.reclusterer.Recluster(ctx, job.GroupID, job.RequestedBy)
	if err != nil {
		w.logger.Error("cluster job failed",
			"job_id", job.ID,
			"group_id", job.GroupID,
			"error", err,
		)
		if markErr := w.queue.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			w.logger.Error("failed to mark job failed", "job_id", job.ID, "error", markErr)
		}
		return
	}

	if err := w.queue.MarkDone(ctx, job.ID, summary.TotalClusters, summary.TotalFaces); err != nil {
		w.logger.Error("failed to mark job done", "job_id", job.ID, "error", err)
		return
	}

	w.logger.Info("cluster job finished",
		"job_id", job.ID,
		"group_id", job.GroupID,
		"clusters", summary.TotalClusters,
		"faces", summary.TotalFaces,
	)
}
