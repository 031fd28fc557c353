package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/facelens-app/facelens/internal/domain"
)

// Pinger checks connectivity to the backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: "0.1.0",
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return domain.ErrDatabaseUnavailable.WithError(err)
	}
	return c.JSON(HealthResponse{
		Status: "ready",
	})
}
