package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/facelens-app/facelens/internal/domain"
	"github.com/facelens-app/facelens/internal/jobs"
)

// ReclusterQueue enqueues background recluster jobs
type ReclusterQueue interface {
	Enqueue(ctx context.Context, groupID, requestedBy uuid.UUID) (*jobs.Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*jobs.Job, error)
}

// MergeService merges two clusters of the same group
type MergeService interface {
	Merge(ctx context.Context, sourceID, targetID, requestedBy uuid.UUID) (*domain.Cluster, error)
}

// ClusterReader reads and renames persisted clusters
type ClusterReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Cluster, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Cluster, error)
	ListMembers(ctx context.Context, clusterID uuid.UUID) ([]domain.ClusterMember, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
}

// GroupReader verifies group existence and admin rights
type GroupReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

// ClusterHandler serves the people/cluster endpoints
type ClusterHandler struct {
	queue    ReclusterQueue
	merge    MergeService
	clusters ClusterReader
	groups   GroupReader
	logger   *slog.Logger
}

func NewClusterHandler(queue ReclusterQueue, merge MergeService, clusters ClusterReader, groups GroupReader, logger *slog.Logger) *ClusterHandler {
	return &ClusterHandler{
		queue:    queue,
		merge:    merge,
		clusters: clusters,
		groups:   groups,
		logger:   logger,
	}
}

// requestingUser extracts the authenticated user id forwarded by the
// gateway. Authentication itself happens upstream.
func requestingUser(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, domain.ErrBadRequest.WithError(fiber.NewError(fiber.StatusBadRequest, "missing X-User-ID header"))
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrBadRequest.WithError(err)
	}
	return userID, nil
}

// ListClusters handles GET /groups/:groupID/clusters
func (h *ClusterHandler) ListClusters(c *fiber.Ctx) error {
	groupID, err := uuid.Parse(c.Params("groupID"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if _, err := h.groups.GetByID(c.Context(), groupID); err != nil {
		return err
	}

	clusters, err := h.clusters.ListByGroup(c.Context(), groupID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"clusters": clusters})
}

// ListClusterMembers handles GET /clusters/:clusterID/members
func (h *ClusterHandler) ListClusterMembers(c *fiber.Ctx) error {
	clusterID, err := uuid.Parse(c.Params("clusterID"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	cluster, err := h.clusters.GetByID(c.Context(), clusterID)
	if err != nil {
		return err
	}

	members, err := h.clusters.ListMembers(c.Context(), clusterID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"cluster": cluster,
		"members": members,
	})
}

// Recluster handles POST /groups/:groupID/recluster. The rebuild runs
// in the background; the response carries the job id to poll.
func (h *ClusterHandler) Recluster(c *fiber.Ctx) error {
	groupID, err := uuid.Parse(c.Params("groupID"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	userID, err := requestingUser(c)
	if err != nil {
		return err
	}

	if _, err := h.groups.GetByID(c.Context(), groupID); err != nil {
		return err
	}

	isAdmin, err := h.groups.IsAdmin(c.Context(), groupID, userID)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}
	if !isAdmin {
		return domain.ErrForbidden
	}

	job, err := h.queue.Enqueue(c.Context(), groupID, userID)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	h.logger.Info("recluster job enqueued",
		"job_id", job.ID,
		"group_id", groupID,
		"requested_by", userID,
	)

	return c.Status(fiber.StatusAccepted).JSON(job)
}

// GetJob handles GET /jobs/:jobID
func (h *ClusterHandler) GetJob(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("jobID"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	job, err := h.queue.GetByID(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.JSON(job)
}

// MergeRequest is the body for POST /clusters/merge
type MergeRequest struct {
	SourceClusterID uuid.UUID `json:"source_cluster_id"`
	TargetClusterID uuid.UUID `json:"target_cluster_id"`
}

// MergeClusters handles POST /clusters/merge
func (h *ClusterHandler) MergeClusters(c *fiber.Ctx) error {
	userID, err := requestingUser(c)
	if err != nil {
		return err
	}

	var req MergeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if req.SourceClusterID == uuid.Nil || req.TargetClusterID == uuid.Nil {
		return domain.ErrBadRequest
	}

	merged, err := h.merge.Merge(c.Context(), req.SourceClusterID, req.TargetClusterID, userID)
	if err != nil {
		return err
	}

	return c.JSON(merged)
}

// RenameRequest is the body for PATCH /clusters/:clusterID/name
type RenameRequest struct {
	Name string `json:"name"`
}

// RenameCluster handles PATCH /clusters/:clusterID/name
func (h *ClusterHandler) RenameCluster(c *fiber.Ctx) error {
	clusterID, err := uuid.Parse(c.Params("clusterID"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	userID, err := requestingUser(c)
	if err != nil {
		return err
	}

	var req RenameRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if req.Name == "" {
		return domain.ErrBadRequest
	}

	cluster, err := h.clusters.GetByID(c.Context(), clusterID)
	if err != nil {
		return err
	}

	isAdmin, err := h.groups.IsAdmin(c.Context(), cluster.GroupID, userID)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}
	if !isAdmin {
		return domain.ErrForbidden
	}

	if err := h.clusters.Rename(c.Context(), clusterID, req.Name); err != nil {
		return err
	}

	renamed, err := h.clusters.GetByID(c.Context(), clusterID)
	if err != nil {
		return err
	}

	return c.JSON(renamed)
}
