package oracle

import (
	"context"
	"errors"
)

// Match is a single candidate returned by a similarity search.
// Similarity is a percentage in [0,100].
type Match struct {
	FaceID     string  `json:"face_id"`
	Similarity float64 `json:"similarity"`
}

// FaceOracle is the narrow contract the clustering engine consumes.
// Implementations wrap an external similarity-search service; callers
// must not assume stable candidate ordering or bit-identical scores
// between calls.
type FaceOracle interface {
	// SearchSimilarFaces returns up to maxCandidates faces whose
	// similarity to faceID is at or above thresholdPercent.
	SearchSimilarFaces(ctx context.Context, collectionID, faceID string, maxCandidates int, thresholdPercent float64) ([]Match, error)

	// IndexFace adds a face image to the collection and returns the
	// oracle-assigned face id.
	IndexFace(ctx context.Context, collectionID string, image []byte, externalImageID string) (string, error)

	// DeleteFaces removes faces from the collection.
	DeleteFaces(ctx context.Context, collectionID string, faceIDs []string) error

	// EnsureCollection creates the collection if it does not exist.
	EnsureCollection(ctx context.Context, collectionID string) error

	// DeleteCollection removes the collection and every indexed face.
	DeleteCollection(ctx context.Context, collectionID string) error
}

var (
	// ErrCollectionNotFound indicates the whole collection is missing.
	// Unlike per-face search failures this aborts a clustering run.
	ErrCollectionNotFound = errors.New("face collection not found")

	// ErrFaceNotFound indicates the queried face id is not indexed.
	ErrFaceNotFound = errors.New("face not found in collection")

	// ErrUnavailable indicates the oracle cannot be reached at all.
	ErrUnavailable = errors.New("face oracle unavailable")
)
