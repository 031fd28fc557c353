package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/facelens-app/facelens/internal/domain"
)

type FaceRepository struct {
	pool PgxPool
}

func NewFaceRepository(pool PgxPool) *FaceRepository {
	return &FaceRepository{pool: pool}
}

const faceColumns = `id, media_id, group_id, oracle_face_id,
	bbox_x, bbox_y, bbox_width, bbox_height,
	confidence, brightness, sharpness,
	pose_roll, pose_yaw, pose_pitch,
	quality_score, processed, created_at`

func (r *FaceRepository) Create(ctx context.Context, face *domain.Face) error {
	query := `
		INSERT INTO faces (
			id, media_id, group_id, oracle_face_id,
			bbox_x, bbox_y, bbox_width, bbox_height,
			confidence, brightness, sharpness,
			pose_roll, pose_yaw, pose_pitch,
			quality_score, embedding, processed, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
		RETURNING created_at
	`

	if face.ID == uuid.Nil {
		face.ID = uuid.New()
	}

	var roll, yaw, pitch *float64
	if face.Pose != nil {
		roll, yaw, pitch = &face.Pose.Roll, &face.Pose.Yaw, &face.Pose.Pitch
	}

	var embedding *pgvector.Vector
	if len(face.Embedding) > 0 {
		vec := pgvector.NewVector(face.Embedding)
		embedding = &vec
	}

	err := r.pool.QueryRow(ctx, query,
		face.ID,
		face.MediaID,
		face.GroupID,
		face.OracleFaceID,
		face.BoundingBox.X,
		face.BoundingBox.Y,
		face.BoundingBox.Width,
		face.BoundingBox.Height,
		face.Confidence,
		face.Brightness,
		face.Sharpness,
		roll,
		yaw,
		pitch,
		face.QualityScore,
		embedding,
		face.Processed,
	).Scan(&face.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrFaceAlreadyIndexed
		}
		return fmt.Errorf("create face: %w", err)
	}

	return nil
}

func (r *FaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Face, error) {
	query := fmt.Sprintf(`SELECT %s FROM faces WHERE id = $1`, faceColumns)

	face, err := scanFace(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get face: %w", err)
	}
	return face, nil
}

// ListProcessedByGroup returns every processed face across the group's
// media, the input set for a clustering run.
func (r *FaceRepository) ListProcessedByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Face, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM faces
		WHERE group_id = $1 AND processed = true
		ORDER BY created_at, id
	`, faceColumns)

	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list processed faces: %w", err)
	}
	defer rows.Close()

	var faces []domain.Face
	for rows.Next() {
		face, err := scanFace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		faces = append(faces, *face)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faces: %w", err)
	}

	return faces, nil
}

// MarkProcessed flags the face ready for clustering and stores its
// assigned quality score.
func (r *FaceRepository) MarkProcessed(ctx context.Context, id uuid.UUID, qualityScore int) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE faces SET processed = true, quality_score = $2 WHERE id = $1`,
		id, qualityScore,
	)
	if err != nil {
		return fmt.Errorf("mark face processed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrFaceNotFound
	}
	return nil
}

func scanFace(row pgx.Row) (*domain.Face, error) {
	var (
		face             domain.Face
		roll, yaw, pitch *float64
	)

	err := row.Scan(
		&face.ID,
		&face.MediaID,
		&face.GroupID,
		&face.OracleFaceID,
		&face.BoundingBox.X,
		&face.BoundingBox.Y,
		&face.BoundingBox.Width,
		&face.BoundingBox.Height,
		&face.Confidence,
		&face.Brightness,
		&face.Sharpness,
		&roll,
		&yaw,
		&pitch,
		&face.QualityScore,
		&face.Processed,
		&face.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if roll != nil && yaw != nil && pitch != nil {
		face.Pose = &domain.Pose{Roll: *roll, Yaw: *yaw, Pitch: *pitch}
	}

	return &face, nil
}
