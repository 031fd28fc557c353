package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facelens-app/facelens/internal/domain"
)

func uniqueViolation() *pgconn.PgError {
	return &pgconn.PgError{Code: "23505"}
}

// FaceRepository tests

func TestFaceRepository_Create_DuplicateOracleFace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO faces`).
		WillReturnError(uniqueViolation())

	repo := NewFaceRepository(mock)
	face := &domain.Face{
		MediaID:      uuid.New(),
		GroupID:      uuid.New(),
		OracleFaceID: "oracle-1",
	}

	err = repo.Create(context.Background(), face)

	assert.ErrorIs(t, err, domain.ErrFaceAlreadyIndexed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFaceRepository_GetByID(t *testing.T) {
	faceID := uuid.New()
	mediaID := uuid.New()
	groupID := uuid.New()
	now := time.Now()
	score := 87

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      *domain.Face
		wantErr   error
	}{
		{
			name: "successful retrieval",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{
					"id", "media_id", "group_id", "oracle_face_id",
					"bbox_x", "bbox_y", "bbox_width", "bbox_height",
					"confidence", "brightness", "sharpness",
					"pose_roll", "pose_yaw", "pose_pitch",
					"quality_score", "processed", "created_at",
				}).AddRow(
					faceID, mediaID, groupID, "oracle-1",
					0.1, 0.2, 0.3, 0.4,
					99.5, nil, nil,
					nil, nil, nil,
					&score, true, now,
				)

				mock.ExpectQuery(`FROM faces WHERE id = \$1`).
					WithArgs(faceID).
					WillReturnRows(rows)
			},
			want: &domain.Face{
				ID:           faceID,
				MediaID:      mediaID,
				GroupID:      groupID,
				OracleFaceID: "oracle-1",
				BoundingBox:  domain.BoundingBox{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.4},
				Confidence:   99.5,
				QualityScore: &score,
				Processed:    true,
				CreatedAt:    now,
			},
		},
		{
			name: "face not found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM faces WHERE id = \$1`).
					WithArgs(faceID).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrFaceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewFaceRepository(mock)
			got, err := repo.GetByID(context.Background(), faceID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				assert.Nil(t, got.Pose)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFaceRepository_MarkProcessed_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	faceID := uuid.New()
	mock.ExpectExec(`UPDATE faces SET processed = true`).
		WithArgs(faceID, 90).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewFaceRepository(mock)
	err = repo.MarkProcessed(context.Background(), faceID, 90)

	assert.ErrorIs(t, err, domain.ErrFaceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ClusterRepository tests

func TestClusterRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO clusters`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := NewClusterRepository(mock)
	cluster := &domain.Cluster{GroupID: uuid.New(), Confidence: 0.9}

	err = repo.Create(context.Background(), cluster)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, cluster.ID)
	assert.Equal(t, now, cluster.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClusterRepository_AddMembers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	clusterID := uuid.New()
	members := []domain.ClusterMember{
		{FaceID: uuid.New(), Confidence: 1.0},
		{FaceID: uuid.New(), Confidence: 1.0},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO cluster_members`).
		WithArgs(pgxmock.AnyArg(), clusterID, members[0].FaceID, 1.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO cluster_members`).
		WithArgs(pgxmock.AnyArg(), clusterID, members[1].FaceID, 1.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE clusters SET appearance_count = appearance_count \+ \$2`).
		WithArgs(clusterID, 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	repo := NewClusterRepository(mock)
	err = repo.AddMembers(context.Background(), clusterID, members)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClusterRepository_AddMembers_FaceAlreadyAssigned(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	clusterID := uuid.New()
	members := []domain.ClusterMember{{FaceID: uuid.New(), Confidence: 1.0}}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO cluster_members`).
		WillReturnError(uniqueViolation())
	mock.ExpectRollback()

	repo := NewClusterRepository(mock)
	err = repo.AddMembers(context.Background(), clusterID, members)

	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestClusterRepository_AddMembers_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClusterRepository(mock)
	err = repo.AddMembers(context.Background(), uuid.New(), nil)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClusterRepository_CountMembers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	clusterID := uuid.New()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM cluster_members`).
		WithArgs(clusterID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	repo := NewClusterRepository(mock)
	count, err := repo.CountMembers(context.Background(), clusterID)

	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClusterRepository_MoveMembers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sourceID := uuid.New()
	targetID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE cluster_members SET cluster_id = \$2`).
		WithArgs(sourceID, targetID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectExec(`UPDATE clusters SET appearance_count = appearance_count \+ \$2`).
		WithArgs(targetID, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE clusters SET appearance_count = appearance_count - \$2`).
		WithArgs(sourceID, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	repo := NewClusterRepository(mock)
	moved, err := repo.MoveMembers(context.Background(), sourceID, targetID)

	require.NoError(t, err)
	assert.Equal(t, 3, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClusterRepository_DeleteByGroup(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	groupID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM cluster_members`).
		WithArgs(groupID).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectExec(`DELETE FROM clusters WHERE group_id = \$1`).
		WithArgs(groupID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	repo := NewClusterRepository(mock)
	err = repo.DeleteByGroup(context.Background(), groupID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClusterRepository_UpdateStats(t *testing.T) {
	clusterID := uuid.New()

	t.Run("nil name keeps the existing one", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE clusters SET confidence = \$2, name = COALESCE`).
			WithArgs(clusterID, 0.875, (*string)(nil)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewClusterRepository(mock)
		err = repo.UpdateStats(context.Background(), clusterID, 0.875, nil)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown cluster", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE clusters SET confidence = \$2, name = COALESCE`).
			WithArgs(clusterID, 0.5, (*string)(nil)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewClusterRepository(mock)
		err = repo.UpdateStats(context.Background(), clusterID, 0.5, nil)

		assert.ErrorIs(t, err, domain.ErrClusterNotFound)
	})
}

// GroupRepository tests

func TestGroupRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	groupID := uuid.New()
	mock.ExpectQuery(`FROM groups`).
		WithArgs(groupID).
		WillReturnError(pgx.ErrNoRows)

	repo := NewGroupRepository(mock)
	_, err = repo.GetByID(context.Background(), groupID)

	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository_IsAdmin(t *testing.T) {
	groupID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name    string
		exists  bool
		wantErr bool
	}{
		{name: "admin member", exists: true},
		{name: "regular member", exists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs(groupID, userID).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			repo := NewGroupRepository(mock)
			got, err := repo.IsAdmin(context.Background(), groupID, userID)

			require.NoError(t, err)
			assert.Equal(t, tt.exists, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGroupRepository_IsAdmin_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnError(errors.New("connection refused"))

	repo := NewGroupRepository(mock)
	_, err = repo.IsAdmin(context.Background(), uuid.New(), uuid.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "check group admin")
}
