package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/facelens-app/facelens/internal/domain"
	"github.com/facelens-app/facelens/internal/service"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// IngestService registers detected faces for later clustering
type IngestService interface {
	Ingest(ctx context.Context, in service.DetectionInput) (*domain.Face, error)
}

// FaceReader reads persisted faces
type FaceReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Face, error)
}

// FaceHandler handles face ingestion requests from the detection pipeline
type FaceHandler struct {
	ingest IngestService
	faces  FaceReader
	logger *slog.Logger
}

func NewFaceHandler(ingest IngestService, faces FaceReader, logger *slog.Logger) *FaceHandler {
	return &FaceHandler{
		ingest: ingest,
		faces:  faces,
		logger: logger,
	}
}

// IngestResponse response for the ingest endpoint
type IngestResponse struct {
	FaceID       string `json:"face_id"`
	OracleFaceID string `json:"oracle_face_id"`
	QualityScore int    `json:"quality_score"`
	CreatedAt    string `json:"created_at"`
}

// Ingest POST /v1/faces - register one detected face
func (h *FaceHandler) Ingest(c *fiber.Ctx) error {
	// 1. Extract identifiers from form
	mediaID, err := uuid.Parse(strings.TrimSpace(c.FormValue("media_id")))
	if err != nil {
		return domain.ErrBadRequest.WithError(errors.New("media_id is required"))
	}
	groupID, err := uuid.Parse(strings.TrimSpace(c.FormValue("group_id")))
	if err != nil {
		return domain.ErrBadRequest.WithError(errors.New("group_id is required"))
	}

	// 2. Extract and validate image
	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	// 3. Parse detection attributes
	in := service.DetectionInput{
		MediaID: mediaID,
		GroupID: groupID,
		Image:   imageBytes,
	}
	if in.Confidence, err = formFloat(c, "confidence"); err != nil {
		return err
	}
	if in.BoundingBox, err = parseBoundingBox(c); err != nil {
		return err
	}
	in.Brightness = optionalFormFloat(c, "brightness")
	in.Sharpness = optionalFormFloat(c, "sharpness")
	in.Pose = parsePose(c)

	// 4. Call service to ingest
	face, err := h.ingest.Ingest(c.Context(), in)
	if err != nil {
		return err
	}

	// 5. Return response
	return c.Status(fiber.StatusCreated).JSON(IngestResponse{
		FaceID:       face.ID.String(),
		OracleFaceID: face.OracleFaceID,
		QualityScore: *face.QualityScore,
		CreatedAt:    face.CreatedAt.Format("2006-01-02T15:04:05Z"),
	})
}

// GetFace GET /v1/faces/:faceID
func (h *FaceHandler) GetFace(c *fiber.Ctx) error {
	faceID, err := uuid.Parse(c.Params("faceID"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	face, err := h.faces.GetByID(c.Context(), faceID)
	if err != nil {
		return err
	}

	return c.JSON(face)
}

func formFloat(c *fiber.Ctx, field string) (float64, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return 0, domain.ErrBadRequest.WithError(errors.New(field + " is required"))
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, domain.ErrBadRequest.WithError(err)
	}
	return val, nil
}

func optionalFormFloat(c *fiber.Ctx, field string) *float64 {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &val
}

func parseBoundingBox(c *fiber.Ctx) (domain.BoundingBox, error) {
	var box domain.BoundingBox
	var err error
	if box.X, err = formFloat(c, "box_x"); err != nil {
		return box, err
	}
	if box.Y, err = formFloat(c, "box_y"); err != nil {
		return box, err
	}
	if box.Width, err = formFloat(c, "box_width"); err != nil {
		return box, err
	}
	if box.Height, err = formFloat(c, "box_height"); err != nil {
		return box, err
	}
	return box, nil
}

// parsePose returns nil unless all three angles are present.
func parsePose(c *fiber.Ctx) *domain.Pose {
	roll := optionalFormFloat(c, "pose_roll")
	yaw := optionalFormFloat(c, "pose_yaw")
	pitch := optionalFormFloat(c, "pose_pitch")
	if roll == nil || yaw == nil || pitch == nil {
		return nil
	}
	return &domain.Pose{Roll: *roll, Yaw: *yaw, Pitch: *pitch}
}

// extractAndValidateImage extracts and validates the image from the form
func extractAndValidateImage(c *fiber.Ctx) ([]byte, error) {
	// 1. Extract file
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrBadRequest.WithError(err)
	}

	// 2. Validate size
	if file.Size > maxImageSize || file.Size == 0 {
		return nil, domain.ErrBadRequest.WithError(errors.New("invalid image size"))
	}

	// 3. Validate Content-Type
	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrBadRequest.WithError(errors.New("unsupported image type"))
	}

	// 4. Read image bytes
	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrBadRequest.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrBadRequest.WithError(err)
	}

	return imageBytes, nil
}
