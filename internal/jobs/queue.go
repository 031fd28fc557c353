package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facelens-app/facelens/internal/domain"
	"github.com/facelens-app/facelens/internal/repository"
)

// Status of a clustering job
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job is one queued recluster request. Clustering runs in the
// background, never inline with user requests.
type Job struct {
	ID            uuid.UUID  `json:"id"`
	GroupID       uuid.UUID  `json:"group_id"`
	RequestedBy   uuid.UUID  `json:"requested_by"`
	Status        Status     `json:"status"`
	Error         *string    `json:"error,omitempty"`
	TotalClusters *int       `json:"total_clusters,omitempty"`
	TotalFaces    *int       `json:"total_faces,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

type Queue struct {
	pool repository.PgxPool
}

func NewQueue(pool repository.PgxPool) *Queue {
	return &Queue{pool: pool}
}

const jobColumns = `id, group_id, requested_by, status, error, total_clusters, total_faces, created_at, started_at, finished_at`

// Enqueue adds a pending recluster request for the group
func (q *Queue) Enqueue(ctx context.Context, groupID, requestedBy uuid.UUID) (*Job, error) {
	job := &Job{
		ID:          uuid.New(),
		GroupID:     groupID,
		RequestedBy: requestedBy,
		Status:      StatusPending,
	}

	err := q.pool.QueryRow(ctx,
		`INSERT INTO cluster_jobs (id, group_id, requested_by, status, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING created_at`,
		job.ID, job.GroupID, job.RequestedBy, job.Status,
	).Scan(&job.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	return job, nil
}

func (q *Queue) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := q.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM cluster_jobs WHERE id = $1`, jobColumns), id)

	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ClaimNext atomically claims the oldest pending job and marks it
// running. SKIP LOCKED lets multiple workers poll the queue without
// claiming the same job. Returns nil when the queue is empty.
func (q *Queue) ClaimNext(ctx context.Context) (*Job, error) {
	query := fmt.Sprintf(`
		UPDATE cluster_jobs
		SET status = 'running', started_at = NOW()
		WHERE id = (
			SELECT id FROM cluster_jobs
			WHERE status = 'pending'
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING %s
	`, jobColumns)

	job, err := scanJob(q.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return job, nil
}

func (q *Queue) MarkDone(ctx context.Context, id uuid.UUID, totalClusters, totalFaces int) error {
	_, err := q.pool.Exec(ctx,
		`UPDATE cluster_jobs
		 SET status = 'done', total_clusters = $2, total_faces = $3, finished_at = NOW()
		 WHERE id = $1`,
		id, totalClusters, totalFaces,
	)
	if err != nil {
		return fmt.Errorf("mark job done: %w", err)
	}
	return nil
}

func (q *Queue) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	_, err := q.pool.Exec(ctx,
		`UPDATE cluster_jobs SET status = 'failed', error = $2, finished_at = NOW() WHERE id = $1`,
		id, cause,
	)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

func scanJob(row pgx.Row) (*Job, error) {
	var job Job
	err := row.Scan(
		&job.ID,
		&job.GroupID,
		&job.RequestedBy,
		&job.Status,
		&job.Error,
		&job.TotalClusters,
		&job.TotalFaces,
		&job.CreatedAt,
		&job.StartedAt,
		&job.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
