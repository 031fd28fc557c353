package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// FaceIngestResponse represents the response after a face is ingested
type FaceIngestResponse struct {
	FaceID       string `json:"face_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	OracleFaceID string `json:"oracle_face_id" example:"8f2c1a44-7d5e-4b1f-9c3a-2e8d6f0b1a23"`
	QualityScore int    `json:"quality_score" example:"87"`
	CreatedAt    string `json:"created_at" example:"2026-01-01T00:00:00Z"`
}

// FaceResponse represents a stored face
type FaceResponse struct {
	ID           string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	MediaID      string  `json:"media_id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	GroupID      string  `json:"group_id" example:"16fd2706-8baf-433b-82eb-8c7fada847da"`
	OracleFaceID string  `json:"oracle_face_id" example:"8f2c1a44-7d5e-4b1f-9c3a-2e8d6f0b1a23"`
	Confidence   float64 `json:"confidence" example:"99.2"`
	QualityScore int     `json:"quality_score" example:"87"`
	Processed    bool    `json:"processed" example:"true"`
	CreatedAt    string  `json:"created_at" example:"2026-01-01T00:00:00Z"`
}

// ClusterResponse represents a persisted person cluster
type ClusterResponse struct {
	ID                   string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	GroupID              string  `json:"group_id" example:"16fd2706-8baf-433b-82eb-8c7fada847da"`
	Name                 string  `json:"name,omitempty" example:"Alice"`
	AppearanceCount      int     `json:"appearance_count" example:"12"`
	Confidence           float64 `json:"confidence" example:"0.91"`
	RepresentativeFaceID string  `json:"representative_face_id,omitempty" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	CreatedAt            string  `json:"created_at" example:"2026-01-01T00:00:00Z"`
	UpdatedAt            string  `json:"updated_at" example:"2026-01-02T00:00:00Z"`
}

// ClusterListResponse wraps a group's clusters
type ClusterListResponse struct {
	Clusters []ClusterResponse `json:"clusters"`
}

// ClusterMemberResponse represents one face assigned to a cluster
type ClusterMemberResponse struct {
	ID         string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ClusterID  string  `json:"cluster_id" example:"16fd2706-8baf-433b-82eb-8c7fada847da"`
	FaceID     string  `json:"face_id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	Confidence float64 `json:"confidence" example:"1.0"`
	CreatedAt  string  `json:"created_at" example:"2026-01-01T00:00:00Z"`
}

// ClusterMembersResponse wraps a cluster and its members
type ClusterMembersResponse struct {
	Cluster ClusterResponse         `json:"cluster"`
	Members []ClusterMemberResponse `json:"members"`
}

// MergeClustersRequest represents a manual merge request
type MergeClustersRequest struct {
	SourceClusterID string `json:"source_cluster_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TargetClusterID string `json:"target_cluster_id" example:"16fd2706-8baf-433b-82eb-8c7fada847da"`
}

// RenameClusterRequest represents a cluster naming request
type RenameClusterRequest struct {
	Name string `json:"name" example:"Alice"`
}

// JobResponse represents a recluster job
type JobResponse struct {
	ID            string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	GroupID       string `json:"group_id" example:"16fd2706-8baf-433b-82eb-8c7fada847da"`
	Status        string `json:"status" example:"pending"`
	RequestedBy   string `json:"requested_by" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	TotalClusters int    `json:"total_clusters" example:"0"`
	TotalFaces    int    `json:"total_faces" example:"0"`
	Error         string `json:"error,omitempty"`
	CreatedAt     string `json:"created_at" example:"2026-01-01T00:00:00Z"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"BAD_REQUEST"`
	Message string `json:"message" example:"Invalid request"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Facelens Clustering API",
		Version:     "v1.0.0",
		Description: "Face clustering service for group photo sharing: ingests detected faces and groups them into per-person clusters",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/faces - Ingest detected face
		endpoint.New(
			endpoint.POST,
			"/faces",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Ingest a detected face"),
			endpoint.WithDescription("Indexes the cropped face in the group's collection, computes its quality score and stores it ready for clustering"),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(FaceIngestResponse{}, "201", "Face ingested successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "FACE_ALREADY_INDEXED", Message: "Face already indexed for this group"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "ORACLE_UNAVAILABLE", Message: "Face oracle unavailable"}, "502", "Bad Gateway"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/faces/:faceID - Get face
		endpoint.New(
			endpoint.GET,
			"/faces/{faceID}",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Get a stored face"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("faceID", parameter.Path, parameter.WithDescription("Face UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(FaceResponse{}, "200", "Face retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "FACE_NOT_FOUND", Message: "Face not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/groups/:groupID/clusters - List clusters
		endpoint.New(
			endpoint.GET,
			"/groups/{groupID}/clusters",
			endpoint.WithTags("Clusters"),
			endpoint.WithSummary("List a group's clusters"),
			endpoint.WithDescription("Returns every person cluster of the group with appearance counts and confidence"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("groupID", parameter.Path, parameter.WithDescription("Group UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ClusterListResponse{}, "200", "Clusters retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "GROUP_NOT_FOUND", Message: "Group not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/clusters/:clusterID/members - List cluster members
		endpoint.New(
			endpoint.GET,
			"/clusters/{clusterID}/members",
			endpoint.WithTags("Clusters"),
			endpoint.WithSummary("List faces assigned to a cluster"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("clusterID", parameter.Path, parameter.WithDescription("Cluster UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ClusterMembersResponse{}, "200", "Members retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "CLUSTER_NOT_FOUND", Message: "Cluster not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/groups/:groupID/recluster - Trigger recluster
		endpoint.New(
			endpoint.POST,
			"/groups/{groupID}/recluster",
			endpoint.WithTags("Clusters"),
			endpoint.WithSummary("Rebuild a group's clusters"),
			endpoint.WithDescription("Enqueues a background job that discards the group's existing clusters and rebuilds them from all processed faces. Requires group admin."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("groupID", parameter.Path, parameter.WithDescription("Group UUID")),
				parameter.StrParam("X-User-ID", parameter.Header, parameter.WithDescription("Authenticated user UUID forwarded by the gateway")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(JobResponse{}, "202", "Recluster job enqueued"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Requires group admin"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "GROUP_NOT_FOUND", Message: "Group not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/jobs/:jobID - Get job status
		endpoint.New(
			endpoint.GET,
			"/jobs/{jobID}",
			endpoint.WithTags("Jobs"),
			endpoint.WithSummary("Get recluster job status"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("jobID", parameter.Path, parameter.WithDescription("Job UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(JobResponse{}, "200", "Job retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "JOB_NOT_FOUND", Message: "Job not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/clusters/merge - Manual merge
		endpoint.New(
			endpoint.POST,
			"/clusters/merge",
			endpoint.WithTags("Clusters"),
			endpoint.WithSummary("Merge two clusters"),
			endpoint.WithDescription("Moves every face of the source cluster into the target cluster and deletes the source. Both clusters must belong to the same group. Requires group admin."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("X-User-ID", parameter.Header, parameter.WithDescription("Authenticated user UUID forwarded by the gateway")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ClusterResponse{}, "200", "Clusters merged successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SELF_MERGE", Message: "Cannot merge a cluster into itself"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "CLUSTER_GROUP_MISMATCH", Message: "Clusters belong to different groups"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Requires group admin"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "CLUSTER_NOT_FOUND", Message: "Cluster not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// PATCH /v1/clusters/:clusterID/name - Rename cluster
		endpoint.New(
			endpoint.PATCH,
			"/clusters/{clusterID}/name",
			endpoint.WithTags("Clusters"),
			endpoint.WithSummary("Name a cluster"),
			endpoint.WithDescription("Assigns a person name to the cluster. Requires group admin."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("clusterID", parameter.Path, parameter.WithDescription("Cluster UUID")),
				parameter.StrParam("X-User-ID", parameter.Header, parameter.WithDescription("Authenticated user UUID forwarded by the gateway")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ClusterResponse{}, "200", "Cluster renamed successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Name is required"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Requires group admin"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "CLUSTER_NOT_FOUND", Message: "Cluster not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
