package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facelens-app/facelens/internal/domain"
)

type ClusterRepository struct {
	pool PgxPool
}

func NewClusterRepository(pool PgxPool) *ClusterRepository {
	return &ClusterRepository{pool: pool}
}

const clusterColumns = `id, group_id, name, appearance_count, confidence, representative_face_id, created_at, updated_at`

func (r *ClusterRepository) Create(ctx context.Context, cluster *domain.Cluster) error {
	query := `
		INSERT INTO clusters (id, group_id, name, appearance_count, confidence, representative_face_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if cluster.ID == uuid.Nil {
		cluster.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		cluster.ID,
		cluster.GroupID,
		cluster.Name,
		cluster.AppearanceCount,
		cluster.Confidence,
		cluster.RepresentativeFaceID,
	).Scan(&cluster.CreatedAt, &cluster.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create cluster: %w", err)
	}

	return nil
}

func (r *ClusterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cluster, error) {
	query := fmt.Sprintf(`SELECT %s FROM clusters WHERE id = $1`, clusterColumns)

	cluster, err := scanCluster(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClusterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cluster: %w", err)
	}
	return cluster, nil
}

func (r *ClusterRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Cluster, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM clusters
		WHERE group_id = $1
		ORDER BY appearance_count DESC, created_at
	`, clusterColumns)

	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	defer rows.Close()

	var clusters []domain.Cluster
	for rows.Next() {
		cluster, err := scanCluster(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		clusters = append(clusters, *cluster)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clusters: %w", err)
	}

	return clusters, nil
}

func (r *ClusterRepository) ListMembers(ctx context.Context, clusterID uuid.UUID) ([]domain.ClusterMember, error) {
	query := `
		SELECT id, cluster_id, face_id, confidence, created_at
		FROM cluster_members
		WHERE cluster_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, clusterID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []domain.ClusterMember
	for rows.Next() {
		var m domain.ClusterMember
		if err := rows.Scan(&m.ID, &m.ClusterID, &m.FaceID, &m.Confidence, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}

// AddMembers inserts member rows and bumps appearance_count in the
// same transaction. This is the only write path that grows a
// cluster's membership, which keeps the stored counter equal to the
// member row count.
func (r *ClusterRepository) AddMembers(ctx context.Context, clusterID uuid.UUID, members []domain.ClusterMember) error {
	if len(members) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin add members: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i := range members {
		if members[i].ID == uuid.Nil {
			members[i].ID = uuid.New()
		}
		members[i].ClusterID = clusterID

		_, err := tx.Exec(ctx,
			`INSERT INTO cluster_members (id, cluster_id, face_id, confidence, created_at)
			 VALUES ($1, $2, $3, $4, NOW())`,
			members[i].ID, clusterID, members[i].FaceID, members[i].Confidence,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("face %s already belongs to a cluster: %w", members[i].FaceID, domain.ErrBadRequest)
			}
			return fmt.Errorf("insert member: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE clusters SET appearance_count = appearance_count + $2, updated_at = NOW() WHERE id = $1`,
		clusterID, len(members),
	)
	if err != nil {
		return fmt.Errorf("update appearance count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit add members: %w", err)
	}
	return nil
}

// MoveMembers reassigns every member of the source cluster to the
// target, preserving per-membership confidence, and adjusts both
// appearance counts inside one transaction. Returns how many members
// moved.
func (r *ClusterRepository) MoveMembers(ctx context.Context, sourceClusterID, targetClusterID uuid.UUID) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin move members: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	result, err := tx.Exec(ctx,
		`UPDATE cluster_members SET cluster_id = $2 WHERE cluster_id = $1`,
		sourceClusterID, targetClusterID,
	)
	if err != nil {
		return 0, fmt.Errorf("move members: %w", err)
	}
	moved := int(result.RowsAffected())

	_, err = tx.Exec(ctx,
		`UPDATE clusters SET appearance_count = appearance_count + $2, updated_at = NOW() WHERE id = $1`,
		targetClusterID, moved,
	)
	if err != nil {
		return 0, fmt.Errorf("update target count: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE clusters SET appearance_count = appearance_count - $2, updated_at = NOW() WHERE id = $1`,
		sourceClusterID, moved,
	)
	if err != nil {
		return 0, fmt.Errorf("update source count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit move members: %w", err)
	}
	return moved, nil
}

// DeleteMembersByCluster removes every member of a cluster and zeroes
// its appearance_count. Returns how many rows were removed.
func (r *ClusterRepository) DeleteMembersByCluster(ctx context.Context, clusterID uuid.UUID) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin delete members: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	result, err := tx.Exec(ctx, `DELETE FROM cluster_members WHERE cluster_id = $1`, clusterID)
	if err != nil {
		return 0, fmt.Errorf("delete members: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE clusters SET appearance_count = 0, updated_at = NOW() WHERE id = $1`,
		clusterID,
	)
	if err != nil {
		return 0, fmt.Errorf("zero appearance count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit delete members: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// DeleteByGroup removes all cluster state for a group: member rows
// first, then the cluster rows. Used by the recluster rebuild.
func (r *ClusterRepository) DeleteByGroup(ctx context.Context, groupID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete by group: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`DELETE FROM cluster_members
		 WHERE cluster_id IN (SELECT id FROM clusters WHERE group_id = $1)`,
		groupID,
	)
	if err != nil {
		return fmt.Errorf("delete group members: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM clusters WHERE group_id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("delete group clusters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete by group: %w", err)
	}
	return nil
}

func (r *ClusterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM clusters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cluster: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrClusterNotFound
	}
	return nil
}

// UpdateStats sets the aggregate confidence and, when non-nil, the
// name. appearance_count is deliberately not settable here; it only
// changes through the membership write paths.
func (r *ClusterRepository) UpdateStats(ctx context.Context, id uuid.UUID, confidence float64, name *string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE clusters SET confidence = $2, name = COALESCE($3, name), updated_at = NOW() WHERE id = $1`,
		id, confidence, name,
	)
	if err != nil {
		return fmt.Errorf("update cluster stats: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrClusterNotFound
	}
	return nil
}

func (r *ClusterRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE clusters SET name = $2, updated_at = NOW() WHERE id = $1`,
		id, name,
	)
	if err != nil {
		return fmt.Errorf("rename cluster: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrClusterNotFound
	}
	return nil
}

// CountMembers recomputes the membership count from the rows. Used by
// tests and consistency checks against appearance_count.
func (r *ClusterRepository) CountMembers(ctx context.Context, clusterID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM cluster_members WHERE cluster_id = $1`,
		clusterID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

func scanCluster(row pgx.Row) (*domain.Cluster, error) {
	var cluster domain.Cluster
	err := row.Scan(
		&cluster.ID,
		&cluster.GroupID,
		&cluster.Name,
		&cluster.AppearanceCount,
		&cluster.Confidence,
		&cluster.RepresentativeFaceID,
		&cluster.CreatedAt,
		&cluster.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cluster, nil
}
