// Package pgvec implements the face oracle on top of the pgvector
// extension, for self-hosted deployments that keep embeddings from the
// detection pipeline instead of calling AWS. The "collection" is the
// group's slice of the faces table; similarity is cosine.
package pgvec

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/facelens-app/facelens/internal/oracle"
)

// DB is the subset of pgxpool.Pool the oracle needs
type DB interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type Oracle struct {
	db DB
}

var _ oracle.FaceOracle = (*Oracle)(nil)

func New(db DB) *Oracle {
	return &Oracle{db: db}
}

func (o *Oracle) SearchSimilarFaces(ctx context.Context, collectionID, faceID string, maxCandidates int, thresholdPercent float64) ([]oracle.Match, error) {
	groupID, err := uuid.Parse(collectionID)
	if err != nil {
		return nil, fmt.Errorf("invalid collection id %q: %w", collectionID, err)
	}

	var exists bool
	err = o.db.QueryRow(ctx,
		`SELECT embedding IS NOT NULL FROM faces WHERE group_id = $1 AND oracle_face_id = $2`,
		groupID, faceID,
	).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("face %s: %w", faceID, oracle.ErrFaceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup query face: %w", err)
	}
	if !exists {
		// Face was indexed without an embedding, it cannot match anything
		return []oracle.Match{}, nil
	}

	query := `
		SELECT f.oracle_face_id, (1 - (f.embedding <=> q.embedding)) * 100 AS similarity
		FROM faces f,
			(SELECT embedding FROM faces WHERE group_id = $1 AND oracle_face_id = $2) q
		WHERE f.group_id = $1
			AND f.oracle_face_id <> $2
			AND f.embedding IS NOT NULL
			AND (1 - (f.embedding <=> q.embedding)) * 100 >= $3
		ORDER BY f.embedding <=> q.embedding
		LIMIT $4
	`

	rows, err := o.db.Query(ctx, query, groupID, faceID, thresholdPercent, maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var matches []oracle.Match
	for rows.Next() {
		var m oracle.Match
		if err := rows.Scan(&m.FaceID, &m.Similarity); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}

	return matches, nil
}

// IndexFace mints a face id for the collection. The embedding itself
// is stored on the face row by the ingest path, so there is nothing to
// push to an external index here.
func (o *Oracle) IndexFace(ctx context.Context, collectionID string, image []byte, externalImageID string) (string, error) {
	if _, err := uuid.Parse(collectionID); err != nil {
		return "", fmt.Errorf("invalid collection id %q: %w", collectionID, err)
	}
	return uuid.New().String(), nil
}

// DeleteFaces clears the embeddings of the given faces so they stop
// matching. The face rows themselves belong to the detection pipeline.
func (o *Oracle) DeleteFaces(ctx context.Context, collectionID string, faceIDs []string) error {
	if len(faceIDs) == 0 {
		return nil
	}
	groupID, err := uuid.Parse(collectionID)
	if err != nil {
		return fmt.Errorf("invalid collection id %q: %w", collectionID, err)
	}

	_, err = o.db.Exec(ctx,
		`UPDATE faces SET embedding = NULL WHERE group_id = $1 AND oracle_face_id = ANY($2)`,
		groupID, faceIDs,
	)
	if err != nil {
		return fmt.Errorf("delete faces: %w", err)
	}
	return nil
}

// EnsureCollection is a no-op: the faces table is the collection.
func (o *Oracle) EnsureCollection(ctx context.Context, collectionID string) error {
	_, err := uuid.Parse(collectionID)
	if err != nil {
		return fmt.Errorf("invalid collection id %q: %w", collectionID, err)
	}
	return nil
}

func (o *Oracle) DeleteCollection(ctx context.Context, collectionID string) error {
	groupID, err := uuid.Parse(collectionID)
	if err != nil {
		return fmt.Errorf("invalid collection id %q: %w", collectionID, err)
	}
	_, err = o.db.Exec(ctx, `UPDATE faces SET embedding = NULL WHERE group_id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}
