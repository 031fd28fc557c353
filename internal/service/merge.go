package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/facelens-app/facelens/internal/domain"
)

// MergeService folds one cluster into another, an admin operation for
// when the engine split the same person across two clusters.
type MergeService struct {
	groups   GroupRepositoryInterface
	clusters ClusterRepositoryInterface
	logger   *slog.Logger
}

func NewMergeService(groups GroupRepositoryInterface, clusters ClusterRepositoryInterface, logger *slog.Logger) *MergeService {
	return &MergeService{
		groups:   groups,
		clusters: clusters,
		logger:   logger,
	}
}

// Merge moves every member of the source cluster into the target,
// recomputes the target's aggregate confidence as the appearance-
// count-weighted average of both, adopts the source's name when the
// target has none, and deletes the source. Not idempotent: a second
// call fails with not-found because the source is gone.
func (s *MergeService) Merge(ctx context.Context, sourceID, targetID, requestedBy uuid.UUID) (*domain.Cluster, error) {
	if sourceID == targetID {
		return nil, domain.ErrSelfMerge
	}

	source, err := s.clusters.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.clusters.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if source.GroupID != target.GroupID {
		return nil, domain.ErrClusterGroupMismatch
	}

	isAdmin, err := s.groups.IsAdmin(ctx, source.GroupID, requestedBy)
	if err != nil {
		return nil, fmt.Errorf("check admin: %w", err)
	}
	if !isAdmin {
		return nil, domain.ErrForbidden
	}

	moved, err := s.clusters.MoveMembers(ctx, sourceID, targetID)
	if err != nil {
		return nil, fmt.Errorf("move members: %w", err)
	}

	mergedCount := source.AppearanceCount + target.AppearanceCount
	mergedConfidence := target.Confidence
	if mergedCount > 0 {
		mergedConfidence = (source.Confidence*float64(source.AppearanceCount) +
			target.Confidence*float64(target.AppearanceCount)) / float64(mergedCount)
	}

	var adoptedName *string
	if target.Name == nil && source.Name != nil {
		adoptedName = source.Name
	}

	if err := s.clusters.UpdateStats(ctx, targetID, mergedConfidence, adoptedName); err != nil {
		return nil, fmt.Errorf("update target stats: %w", err)
	}

	if _, err := s.clusters.DeleteMembersByCluster(ctx, sourceID); err != nil {
		return nil, fmt.Errorf("clear source members: %w", err)
	}
	if err := s.clusters.Delete(ctx, sourceID); err != nil {
		return nil, fmt.Errorf("delete source cluster: %w", err)
	}

	s.logger.Info("clusters merged",
		"group_id", source.GroupID,
		"source_id", sourceID,
		"target_id", targetID,
		"members_moved", moved,
		"merged_count", mergedCount,
	)

	return s.clusters.GetByID(ctx, targetID)
}
