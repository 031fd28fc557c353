package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/facelens-app/facelens/internal/api/docs"
	"github.com/facelens-app/facelens/internal/api/handler"
	"github.com/facelens-app/facelens/internal/api/middleware"
	"github.com/facelens-app/facelens/internal/clustering"
	"github.com/facelens-app/facelens/internal/config"
	"github.com/facelens-app/facelens/internal/jobs"
	"github.com/facelens-app/facelens/internal/lock"
	"github.com/facelens-app/facelens/internal/oracle"
	"github.com/facelens-app/facelens/internal/repository"
	"github.com/facelens-app/facelens/internal/service"
)

type Dependencies struct {
	FaceRepo    *repository.FaceRepository
	ClusterRepo *repository.ClusterRepository
	GroupRepo   *repository.GroupRepository
	FaceOracle  oracle.FaceOracle
	Engine      *clustering.Engine
	Config      *config.Config
	DB          *pgxpool.Pool
}

type Router struct {
	app          *fiber.App
	logger       *slog.Logger
	deps         *Dependencies
	jobWorker    *jobs.Worker
	cancelWorker context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Facelens API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-User-ID",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	healthHandler := handler.NewHealthHandler(r.deps.DB)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	v1 := r.app.Group("/v1")

	// Job queue and recluster worker
	queue := jobs.NewQueue(r.deps.DB)
	locker := lock.NewGroupLock(r.deps.DB)

	reclusterService := service.NewReclusterService(
		r.deps.GroupRepo,
		r.deps.FaceRepo,
		r.deps.ClusterRepo,
		r.deps.Engine,
		locker,
		r.deps.Config.ReclusterThreshold,
		r.logger,
	)

	r.jobWorker = jobs.NewWorker(queue, reclusterService, r.logger, r.deps.Config.JobPollInterval)
	workerCtx, cancel := context.WithCancel(context.Background())
	r.cancelWorker = cancel
	go r.jobWorker.Run(workerCtx)

	// Services
	mergeService := service.NewMergeService(r.deps.GroupRepo, r.deps.ClusterRepo, r.logger)
	ingestService := service.NewIngestService(r.deps.FaceRepo, r.deps.FaceOracle, r.logger)

	// Handlers
	faceHandler := handler.NewFaceHandler(ingestService, r.deps.FaceRepo, r.logger)
	clusterHandler := handler.NewClusterHandler(queue, mergeService, r.deps.ClusterRepo, r.deps.GroupRepo, r.logger)

	// Face routes
	v1.Post("/faces", faceHandler.Ingest)
	v1.Get("/faces/:faceID", faceHandler.GetFace)

	// Cluster routes
	v1.Get("/groups/:groupID/clusters", clusterHandler.ListClusters)
	v1.Post("/groups/:groupID/recluster", clusterHandler.Recluster)
	v1.Get("/clusters/:clusterID/members", clusterHandler.ListClusterMembers)
	v1.Post("/clusters/merge", clusterHandler.MergeClusters)
	v1.Patch("/clusters/:clusterID/name", clusterHandler.RenameCluster)

	// Job routes
	v1.Get("/jobs/:jobID", clusterHandler.GetJob)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.cancelWorker != nil {
		r.cancelWorker()
	}

	return r.app.Shutdown()
}

// ShutdownWithTimeout stops the worker and drains in-flight requests,
// giving up after the timeout.
func (r *Router) ShutdownWithTimeout(timeout time.Duration) error {
	if r.cancelWorker != nil {
		r.cancelWorker()
	}

	return r.app.ShutdownWithTimeout(timeout)
}
