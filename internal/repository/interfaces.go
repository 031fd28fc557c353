package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/facelens-app/facelens/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories use. It is
// satisfied by pgxmock.PgxPoolIface in tests.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// FaceRepositoryInterface defines operations for face data access
type FaceRepositoryInterface interface {
	Create(ctx context.Context, face *domain.Face) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Face, error)
	ListProcessedByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Face, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, qualityScore int) error
}

// ClusterRepositoryInterface defines operations for cluster data
// access. Every mutation that touches membership goes through
// AddMembers, MoveMembers or DeleteMembersByCluster so that
// appearance_count always equals the member row count.
type ClusterRepositoryInterface interface {
	Create(ctx context.Context, cluster *domain.Cluster) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Cluster, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Cluster, error)
	ListMembers(ctx context.Context, clusterID uuid.UUID) ([]domain.ClusterMember, error)
	AddMembers(ctx context.Context, clusterID uuid.UUID, members []domain.ClusterMember) error
	MoveMembers(ctx context.Context, sourceClusterID, targetClusterID uuid.UUID) (int, error)
	DeleteMembersByCluster(ctx context.Context, clusterID uuid.UUID) (int, error)
	DeleteByGroup(ctx context.Context, groupID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStats(ctx context.Context, id uuid.UUID, confidence float64, name *string) error
	Rename(ctx context.Context, id uuid.UUID, name string) error
	CountMembers(ctx context.Context, clusterID uuid.UUID) (int, error)
}

// GroupRepositoryInterface defines the read-only group lookups the
// clustering use cases need
type GroupRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}
