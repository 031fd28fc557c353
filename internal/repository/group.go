package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facelens-app/facelens/internal/domain"
)

type GroupRepository struct {
	pool PgxPool
}

func NewGroupRepository(pool PgxPool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	query := `
		SELECT id, name, is_active, created_at, updated_at
		FROM groups
		WHERE id = $1
	`

	var group domain.Group
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.IsActive,
		&group.CreatedAt,
		&group.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}

	return &group, nil
}

// IsAdmin reports whether the user holds the admin role in the group
func (r *GroupRepository) IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM group_members
			WHERE group_id = $1 AND user_id = $2 AND role = 'admin'
		)
	`

	var isAdmin bool
	if err := r.pool.QueryRow(ctx, query, groupID, userID).Scan(&isAdmin); err != nil {
		return false, fmt.Errorf("check group admin: %w", err)
	}

	return isAdmin, nil
}
