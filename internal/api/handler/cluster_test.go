package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/facelens-app/facelens/internal/domain"
	"github.com/facelens-app/facelens/internal/jobs"
)

// MockReclusterQueue is a mock implementation of ReclusterQueue
type MockReclusterQueue struct {
	mock.Mock
}

func (m *MockReclusterQueue) Enqueue(ctx context.Context, groupID, requestedBy uuid.UUID) (*jobs.Job, error) {
	args := m.Called(ctx, groupID, requestedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.Job), args.Error(1)
}

func (m *MockReclusterQueue) GetByID(ctx context.Context, id uuid.UUID) (*jobs.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.Job), args.Error(1)
}

// MockMergeService is a mock implementation of MergeService
type MockMergeService struct {
	mock.Mock
}

func (m *MockMergeService) Merge(ctx context.Context, sourceID, targetID, requestedBy uuid.UUID) (*domain.Cluster, error) {
	args := m.Called(ctx, sourceID, targetID, requestedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cluster), args.Error(1)
}

// MockClusterReader is a mock implementation of ClusterReader
type MockClusterReader struct {
	mock.Mock
}

func (m *MockClusterReader) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cluster, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cluster), args.Error(1)
}

func (m *MockClusterReader) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Cluster, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Cluster), args.Error(1)
}

func (m *MockClusterReader) ListMembers(ctx context.Context, clusterID uuid.UUID) ([]domain.ClusterMember, error) {
	args := m.Called(ctx, clusterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClusterMember), args.Error(1)
}

func (m *MockClusterReader) Rename(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

// MockGroupReader is a mock implementation of GroupReader
type MockGroupReader struct {
	mock.Mock
}

func (m *MockGroupReader) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupReader) IsAdmin(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(h *ClusterHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := err.(*domain.AppError); ok {
				return c.Status(appErr.StatusCode).JSON(appErr)
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})

	app.Get("/v1/groups/:groupID/clusters", h.ListClusters)
	app.Post("/v1/groups/:groupID/recluster", h.Recluster)
	app.Get("/v1/clusters/:clusterID/members", h.ListClusterMembers)
	app.Post("/v1/clusters/merge", h.MergeClusters)
	app.Patch("/v1/clusters/:clusterID/name", h.RenameCluster)
	app.Get("/v1/jobs/:jobID", h.GetJob)

	return app
}

func TestClusterHandler_Recluster(t *testing.T) {
	groupID := uuid.New()
	userID := uuid.New()

	t.Run("enqueues job and returns 202", func(t *testing.T) {
		groups := new(MockGroupReader)
		groups.On("GetByID", mock.Anything, groupID).Return(&domain.Group{ID: groupID}, nil)
		groups.On("IsAdmin", mock.Anything, groupID, userID).Return(true, nil)

		job := &jobs.Job{ID: uuid.New(), GroupID: groupID, RequestedBy: userID, Status: jobs.StatusPending}
		queue := new(MockReclusterQueue)
		queue.On("Enqueue", mock.Anything, groupID, userID).Return(job, nil)

		h := NewClusterHandler(queue, new(MockMergeService), new(MockClusterReader), groups, testLogger())
		app := newTestApp(h)

		req := httptest.NewRequest("POST", "/v1/groups/"+groupID.String()+"/recluster", nil)
		req.Header.Set("X-User-ID", userID.String())

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

		var got jobs.Job
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, job.ID, got.ID)
		assert.Equal(t, jobs.StatusPending, got.Status)
	})

	t.Run("missing user header returns 400", func(t *testing.T) {
		queue := new(MockReclusterQueue)

		h := NewClusterHandler(queue, new(MockMergeService), new(MockClusterReader), new(MockGroupReader), testLogger())
		app := newTestApp(h)

		req := httptest.NewRequest("POST", "/v1/groups/"+groupID.String()+"/recluster", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-admin returns 403", func(t *testing.T) {
		groups := new(MockGroupReader)
		groups.On("GetByID", mock.Anything, groupID).Return(&domain.Group{ID: groupID}, nil)
		groups.On("IsAdmin", mock.Anything, groupID, userID).Return(false, nil)

		queue := new(MockReclusterQueue)

		h := NewClusterHandler(queue, new(MockMergeService), new(MockClusterReader), groups, testLogger())
		app := newTestApp(h)

		req := httptest.NewRequest("POST", "/v1/groups/"+groupID.String()+"/recluster", nil)
		req.Header.Set("X-User-ID", userID.String())

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestClusterHandler_ListClusters(t *testing.T) {
	groupID := uuid.New()

	groups := new(MockGroupReader)
	groups.On("GetByID", mock.Anything, groupID).Return(&domain.Group{ID: groupID}, nil)

	clusters := new(MockClusterReader)
	clusters.On("ListByGroup", mock.Anything, groupID).Return([]domain.Cluster{
		{ID: uuid.New(), GroupID: groupID, AppearanceCount: 4, Confidence: 0.9},
		{ID: uuid.New(), GroupID: groupID, AppearanceCount: 1, Confidence: 0.5},
	}, nil)

	h := NewClusterHandler(new(MockReclusterQueue), new(MockMergeService), clusters, groups, testLogger())
	app := newTestApp(h)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/groups/"+groupID.String()+"/clusters", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Clusters []domain.Cluster `json:"clusters"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Clusters, 2)
}

func TestClusterHandler_MergeClusters(t *testing.T) {
	userID := uuid.New()
	sourceID := uuid.New()
	targetID := uuid.New()

	t.Run("successful merge", func(t *testing.T) {
		merged := &domain.Cluster{ID: targetID, AppearanceCount: 7}
		merge := new(MockMergeService)
		merge.On("Merge", mock.Anything, sourceID, targetID, userID).Return(merged, nil)

		h := NewClusterHandler(new(MockReclusterQueue), merge, new(MockClusterReader), new(MockGroupReader), testLogger())
		app := newTestApp(h)

		payload, _ := json.Marshal(MergeRequest{SourceClusterID: sourceID, TargetClusterID: targetID})
		req := httptest.NewRequest("POST", "/v1/clusters/merge", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", userID.String())

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got domain.Cluster
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, targetID, got.ID)
		assert.Equal(t, 7, got.AppearanceCount)
	})

	t.Run("self merge propagates 400", func(t *testing.T) {
		merge := new(MockMergeService)
		merge.On("Merge", mock.Anything, sourceID, sourceID, userID).Return(nil, domain.ErrSelfMerge)

		h := NewClusterHandler(new(MockReclusterQueue), merge, new(MockClusterReader), new(MockGroupReader), testLogger())
		app := newTestApp(h)

		payload, _ := json.Marshal(MergeRequest{SourceClusterID: sourceID, TargetClusterID: sourceID})
		req := httptest.NewRequest("POST", "/v1/clusters/merge", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", userID.String())

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing cluster ids return 400", func(t *testing.T) {
		merge := new(MockMergeService)

		h := NewClusterHandler(new(MockReclusterQueue), merge, new(MockClusterReader), new(MockGroupReader), testLogger())
		app := newTestApp(h)

		req := httptest.NewRequest("POST", "/v1/clusters/merge", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", userID.String())

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		merge.AssertNotCalled(t, "Merge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestClusterHandler_RenameCluster(t *testing.T) {
	clusterID := uuid.New()
	groupID := uuid.New()
	userID := uuid.New()
	name := "Alice"

	clusters := new(MockClusterReader)
	clusters.On("GetByID", mock.Anything, clusterID).
		Return(&domain.Cluster{ID: clusterID, GroupID: groupID}, nil).Once()
	clusters.On("Rename", mock.Anything, clusterID, name).Return(nil)
	clusters.On("GetByID", mock.Anything, clusterID).
		Return(&domain.Cluster{ID: clusterID, GroupID: groupID, Name: &name}, nil).Once()

	groups := new(MockGroupReader)
	groups.On("IsAdmin", mock.Anything, groupID, userID).Return(true, nil)

	h := NewClusterHandler(new(MockReclusterQueue), new(MockMergeService), clusters, groups, testLogger())
	app := newTestApp(h)

	payload, _ := json.Marshal(RenameRequest{Name: name})
	req := httptest.NewRequest("PATCH", "/v1/clusters/"+clusterID.String()+"/name", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID.String())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got domain.Cluster
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.Name)
	assert.Equal(t, name, *got.Name)
	clusters.AssertExpectations(t)
}

func TestClusterHandler_GetJob_NotFound(t *testing.T) {
	jobID := uuid.New()

	queue := new(MockReclusterQueue)
	queue.On("GetByID", mock.Anything, jobID).Return(nil, domain.ErrJobNotFound)

	h := NewClusterHandler(queue, new(MockMergeService), new(MockClusterReader), new(MockGroupReader), testLogger())
	app := newTestApp(h)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/jobs/"+jobID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
