package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/facelens-app/facelens/internal/clustering"
	"github.com/facelens-app/facelens/internal/domain"
	"github.com/facelens-app/facelens/internal/oracle"
)

type GroupRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

type FaceRepositoryInterface interface {
	Create(ctx context.Context, face *domain.Face) error
	ListProcessedByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Face, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, qualityScore int) error
}

type ClusterRepositoryInterface interface {
	Create(ctx context.Context, cluster *domain.Cluster) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Cluster, error)
	AddMembers(ctx context.Context, clusterID uuid.UUID, members []domain.ClusterMember) error
	MoveMembers(ctx context.Context, sourceClusterID, targetClusterID uuid.UUID) (int, error)
	DeleteMembersByCluster(ctx context.Context, clusterID uuid.UUID) (int, error)
	DeleteByGroup(ctx context.Context, groupID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStats(ctx context.Context, id uuid.UUID, confidence float64, name *string) error
}

// ClusterEngine is the clustering orchestrator contract
type ClusterEngine interface {
	ClusterFaces(ctx context.Context, collectionID string, faceIDs []string, threshold float64) (*clustering.Result, error)
}

// GroupLocker guards against overlapping clustering runs per group
type GroupLocker interface {
	TryAcquire(ctx context.Context, groupID uuid.UUID) (release func(), acquired bool, err error)
}

// ReclusterSummary reports the outcome of a full rebuild
type ReclusterSummary struct {
	TotalClusters int `json:"total_clusters"`
	TotalFaces    int `json:"total_faces"`
}

// ReclusterService rebuilds a group's entire cluster state from its
// current face set. The rebuild is destructive and not transactional:
// a crash mid-rebuild can leave the group without clusters until the
// job is retried, which is accepted as a retryable state.
type ReclusterService struct {
	groups    GroupRepositoryInterface
	faces     FaceRepositoryInterface
	clusters  ClusterRepositoryInterface
	engine    ClusterEngine
	locker    GroupLocker
	threshold float64
	logger    *slog.Logger
}

func NewReclusterService(
	groups GroupRepositoryInterface,
	faces FaceRepositoryInterface,
	clusters ClusterRepositoryInterface,
	engine ClusterEngine,
	locker GroupLocker,
	threshold float64,
	logger *slog.Logger,
) *ReclusterService {
	return &ReclusterService{
		groups:    groups,
		faces:     faces,
		clusters:  clusters,
		engine:    engine,
		locker:    locker,
		threshold: threshold,
		logger:    logger,
	}
}

// Recluster discards all existing cluster state for the group and
// rebuilds it from scratch. The threshold is deliberately lower than
// the default clustering threshold to favor larger groupings during an
// explicit rebuild. Aborts before any mutation when the group has no
// processed faces.
func (s *ReclusterService) Recluster(ctx context.Context, groupID, requestedBy uuid.UUID) (*ReclusterSummary, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	isAdmin, err := s.groups.IsAdmin(ctx, groupID, requestedBy)
	if err != nil {
		return nil, fmt.Errorf("check admin: %w", err)
	}
	if !isAdmin {
		return nil, domain.ErrForbidden
	}

	faces, err := s.faces.ListProcessedByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load faces: %w", err)
	}
	if len(faces) == 0 {
		return nil, domain.ErrNoFacesToCluster
	}

	release, acquired, err := s.locker.TryAcquire(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("acquire group lock: %w", err)
	}
	if !acquired {
		return nil, domain.ErrReclusterInProgress
	}
	defer release()

	s.logger.Info("recluster started",
		"group_id", groupID,
		"faces", len(faces),
		"threshold", s.threshold,
	)

	if err := s.clusters.DeleteByGroup(ctx, groupID); err != nil {
		return nil, fmt.Errorf("delete old cluster state: %w", err)
	}

	faceIDs := make([]string, 0, len(faces))
	faceByOracleID := make(map[string]uuid.UUID, len(faces))
	for _, f := range faces {
		faceIDs = append(faceIDs, f.OracleFaceID)
		faceByOracleID[f.OracleFaceID] = f.ID
	}

	result, err := s.engine.ClusterFaces(ctx, groupID.String(), faceIDs, s.threshold)
	if err != nil {
		if errors.Is(err, oracle.ErrCollectionNotFound) || errors.Is(err, oracle.ErrUnavailable) {
			return nil, domain.ErrOracleUnavailable.WithError(err)
		}
		return nil, fmt.Errorf("cluster faces: %w", err)
	}

	for _, enriched := range result.Clusters {
		if err := s.persistCluster(ctx, groupID, enriched, faceByOracleID); err != nil {
			return nil, err
		}
	}

	for _, faceID := range result.UnclusteredFaces {
		if err := s.persistSingleton(ctx, groupID, faceID, faceByOracleID); err != nil {
			return nil, err
		}
	}

	summary := &ReclusterSummary{
		TotalClusters: len(result.Clusters) + len(result.UnclusteredFaces),
		TotalFaces:    len(faces),
	}

	s.logger.Info("recluster finished",
		"group_id", groupID,
		"clusters", summary.TotalClusters,
		"faces", summary.TotalFaces,
	)

	return summary, nil
}

func (s *ReclusterService) persistCluster(ctx context.Context, groupID uuid.UUID, enriched clustering.EnrichedCluster, faceByOracleID map[string]uuid.UUID) error {
	cluster := &domain.Cluster{
		GroupID:    groupID,
		Confidence: enriched.AverageSimilarity / 100,
	}
	if repID, ok := faceByOracleID[enriched.RepresentativeFaceID]; ok {
		cluster.RepresentativeFaceID = &repID
	}

	if err := s.clusters.Create(ctx, cluster); err != nil {
		return fmt.Errorf("create cluster: %w", err)
	}

	members := make([]domain.ClusterMember, 0, len(enriched.FaceIDs))
	for _, oracleID := range enriched.FaceIDs {
		faceID, ok := faceByOracleID[oracleID]
		if !ok {
			continue
		}
		members = append(members, domain.ClusterMember{
			FaceID:     faceID,
			Confidence: 1.0,
		})
	}

	if err := s.clusters.AddMembers(ctx, cluster.ID, members); err != nil {
		return fmt.Errorf("add cluster members: %w", err)
	}
	return nil
}

// persistSingleton creates a size-1 cluster for a face that matched
// nothing, so it still shows up in the people view.
func (s *ReclusterService) persistSingleton(ctx context.Context, groupID uuid.UUID, oracleID string, faceByOracleID map[string]uuid.UUID) error {
	faceID, ok := faceByOracleID[oracleID]
	if !ok {
		return nil
	}

	cluster := &domain.Cluster{
		GroupID:              groupID,
		Confidence:           0.5,
		RepresentativeFaceID: &faceID,
	}
	if err := s.clusters.Create(ctx, cluster); err != nil {
		return fmt.Errorf("create singleton cluster: %w", err)
	}

	err := s.clusters.AddMembers(ctx, cluster.ID, []domain.ClusterMember{
		{FaceID: faceID, Confidence: 1.0},
	})
	if err != nil {
		return fmt.Errorf("add singleton member: %w", err)
	}
	return nil
}
