package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/facelens-app/facelens/internal/domain"
	"github.com/facelens-app/facelens/internal/service"
)

// MockIngestService is a mock implementation of IngestService
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, in service.DetectionInput) (*domain.Face, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Face), args.Error(1)
}

// MockFaceReader is a mock implementation of FaceReader
type MockFaceReader struct {
	mock.Mock
}

func (m *MockFaceReader) GetByID(ctx context.Context, id uuid.UUID) (*domain.Face, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Face), args.Error(1)
}

func newFaceTestApp(h *FaceHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := err.(*domain.AppError); ok {
				return c.Status(appErr.StatusCode).JSON(appErr)
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})

	app.Post("/v1/faces", h.Ingest)
	app.Get("/v1/faces/:faceID", h.GetFace)

	return app
}

// ingestForm builds a multipart request body with an image part and
// the given form fields.
func ingestForm(t *testing.T, fields map[string]string, imageType string, imageBytes []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	for key, val := range fields {
		require.NoError(t, writer.WriteField(key, val))
	}

	if imageBytes != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="face.jpg"`)
		header.Set("Content-Type", imageType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(imageBytes)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func baseFields(mediaID, groupID uuid.UUID) map[string]string {
	return map[string]string{
		"media_id":   mediaID.String(),
		"group_id":   groupID.String(),
		"confidence": "99.5",
		"box_x":      "0.1",
		"box_y":      "0.2",
		"box_width":  "0.3",
		"box_height": "0.4",
	}
}

func TestFaceHandler_Ingest(t *testing.T) {
	mediaID := uuid.New()
	groupID := uuid.New()

	t.Run("successful ingest returns 201", func(t *testing.T) {
		score := 87
		face := &domain.Face{
			ID:           uuid.New(),
			MediaID:      mediaID,
			GroupID:      groupID,
			OracleFaceID: "oracle-1",
			QualityScore: &score,
			CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}

		svc := new(MockIngestService)
		svc.On("Ingest", mock.Anything, mock.MatchedBy(func(in service.DetectionInput) bool {
			return in.MediaID == mediaID && in.GroupID == groupID &&
				in.Confidence == 99.5 && in.BoundingBox.Width == 0.3 &&
				in.Pose == nil && len(in.Image) > 0
		})).Return(face, nil)

		h := NewFaceHandler(svc, new(MockFaceReader), testLogger())
		app := newFaceTestApp(h)

		body, contentType := ingestForm(t, baseFields(mediaID, groupID), "image/jpeg", []byte("fake-jpeg-data"))
		req := httptest.NewRequest("POST", "/v1/faces", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var got IngestResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, face.ID.String(), got.FaceID)
		assert.Equal(t, "oracle-1", got.OracleFaceID)
		assert.Equal(t, 87, got.QualityScore)
		svc.AssertExpectations(t)
	})

	t.Run("pose forwarded when all angles present", func(t *testing.T) {
		score := 70
		face := &domain.Face{ID: uuid.New(), OracleFaceID: "oracle-2", QualityScore: &score}

		fields := baseFields(mediaID, groupID)
		fields["pose_roll"] = "5"
		fields["pose_yaw"] = "-10"
		fields["pose_pitch"] = "2.5"

		svc := new(MockIngestService)
		svc.On("Ingest", mock.Anything, mock.MatchedBy(func(in service.DetectionInput) bool {
			return in.Pose != nil && in.Pose.Roll == 5 && in.Pose.Yaw == -10 && in.Pose.Pitch == 2.5
		})).Return(face, nil)

		h := NewFaceHandler(svc, new(MockFaceReader), testLogger())
		app := newFaceTestApp(h)

		body, contentType := ingestForm(t, fields, "image/png", []byte("fake-png-data"))
		req := httptest.NewRequest("POST", "/v1/faces", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("missing image returns 400", func(t *testing.T) {
		svc := new(MockIngestService)

		h := NewFaceHandler(svc, new(MockFaceReader), testLogger())
		app := newFaceTestApp(h)

		body, contentType := ingestForm(t, baseFields(mediaID, groupID), "", nil)
		req := httptest.NewRequest("POST", "/v1/faces", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		svc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
	})

	t.Run("unsupported image type returns 400", func(t *testing.T) {
		svc := new(MockIngestService)

		h := NewFaceHandler(svc, new(MockFaceReader), testLogger())
		app := newFaceTestApp(h)

		body, contentType := ingestForm(t, baseFields(mediaID, groupID), "image/gif", []byte("GIF89a"))
		req := httptest.NewRequest("POST", "/v1/faces", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		svc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
	})

	t.Run("missing bounding box field returns 400", func(t *testing.T) {
		fields := baseFields(mediaID, groupID)
		delete(fields, "box_height")

		svc := new(MockIngestService)

		h := NewFaceHandler(svc, new(MockFaceReader), testLogger())
		app := newFaceTestApp(h)

		body, contentType := ingestForm(t, fields, "image/jpeg", []byte("fake-jpeg-data"))
		req := httptest.NewRequest("POST", "/v1/faces", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		svc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
	})

	t.Run("ingest failure propagates status", func(t *testing.T) {
		svc := new(MockIngestService)
		svc.On("Ingest", mock.Anything, mock.Anything).Return(nil, domain.ErrOracleUnavailable)

		h := NewFaceHandler(svc, new(MockFaceReader), testLogger())
		app := newFaceTestApp(h)

		body, contentType := ingestForm(t, baseFields(mediaID, groupID), "image/jpeg", []byte("fake-jpeg-data"))
		req := httptest.NewRequest("POST", "/v1/faces", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	})
}

func TestFaceHandler_GetFace(t *testing.T) {
	faceID := uuid.New()

	t.Run("returns face", func(t *testing.T) {
		faces := new(MockFaceReader)
		faces.On("GetByID", mock.Anything, faceID).Return(&domain.Face{ID: faceID, OracleFaceID: "oracle-9"}, nil)

		h := NewFaceHandler(new(MockIngestService), faces, testLogger())
		app := newFaceTestApp(h)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/faces/"+faceID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got domain.Face
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, faceID, got.ID)
	})

	t.Run("not found returns 404", func(t *testing.T) {
		faces := new(MockFaceReader)
		faces.On("GetByID", mock.Anything, faceID).Return(nil, domain.ErrFaceNotFound)

		h := NewFaceHandler(new(MockIngestService), faces, testLogger())
		app := newFaceTestApp(h)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/faces/"+faceID.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid id returns 400", func(t *testing.T) {
		h := NewFaceHandler(new(MockIngestService), new(MockFaceReader), testLogger())
		app := newFaceTestApp(h)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/faces/not-a-uuid", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
