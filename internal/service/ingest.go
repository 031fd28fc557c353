package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/facelens-app/facelens/internal/clustering"
	"github.com/facelens-app/facelens/internal/domain"
	"github.com/facelens-app/facelens/internal/oracle"
)

// DetectionInput is one face found by the detection pipeline in an
// uploaded media item, with the cropped face image and the detection
// attributes that feed the quality score.
type DetectionInput struct {
	MediaID     uuid.UUID
	GroupID     uuid.UUID
	Image       []byte
	BoundingBox domain.BoundingBox
	Confidence  float64
	Brightness  *float64
	Sharpness   *float64
	Pose        *domain.Pose
	Embedding   []float32
}

// IngestService registers detected faces with the oracle and stores
// them ready for clustering.
type IngestService struct {
	faces  FaceRepositoryInterface
	oracle oracle.FaceOracle
	logger *slog.Logger
}

func NewIngestService(faces FaceRepositoryInterface, faceOracle oracle.FaceOracle, logger *slog.Logger) *IngestService {
	return &IngestService{
		faces:  faces,
		oracle: faceOracle,
		logger: logger,
	}
}

// Ingest indexes the detection in the group's collection, computes its
// quality score and persists the face row marked processed.
func (s *IngestService) Ingest(ctx context.Context, in DetectionInput) (*domain.Face, error) {
	collectionID := in.GroupID.String()

	if err := s.oracle.EnsureCollection(ctx, collectionID); err != nil {
		return nil, domain.ErrOracleUnavailable.WithError(err)
	}

	oracleFaceID, err := s.oracle.IndexFace(ctx, collectionID, in.Image, in.MediaID.String())
	if err != nil {
		return nil, fmt.Errorf("index face: %w", err)
	}

	score := clustering.QualityScore(clustering.FaceAttributes{
		Confidence: in.Confidence,
		Brightness: in.Brightness,
		Sharpness:  in.Sharpness,
		Pose:       in.Pose,
	})

	face := &domain.Face{
		MediaID:      in.MediaID,
		GroupID:      in.GroupID,
		OracleFaceID: oracleFaceID,
		BoundingBox:  in.BoundingBox,
		Confidence:   in.Confidence,
		Brightness:   in.Brightness,
		Sharpness:    in.Sharpness,
		Pose:         in.Pose,
		QualityScore: &score,
		Embedding:    in.Embedding,
		Processed:    true,
	}

	if err := s.faces.Create(ctx, face); err != nil {
		// The face is indexed but not persisted; remove it from the
		// collection so a retry does not leave an orphan.
		if delErr := s.oracle.DeleteFaces(ctx, collectionID, []string{oracleFaceID}); delErr != nil {
			s.logger.Warn("failed to roll back indexed face",
				"oracle_face_id", oracleFaceID,
				"error", delErr,
			)
		}
		return nil, err
	}

	s.logger.Debug("face ingested",
		"face_id", face.ID,
		"media_id", in.MediaID,
		"group_id", in.GroupID,
		"quality_score", score,
	)

	return face, nil
}
