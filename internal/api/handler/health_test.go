package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facelens-app/facelens/internal/domain"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(_ context.Context) error {
	return s.err
}

func newHealthTestApp(h *HealthHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := err.(*domain.AppError); ok {
				return c.Status(appErr.StatusCode).JSON(appErr)
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})

	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)

	return app
}

func TestHealthHandler_Health(t *testing.T) {
	h := NewHealthHandler(&stubPinger{})
	app := newHealthTestApp(h)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "ok", got.Status)
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		h := NewHealthHandler(&stubPinger{})
		app := newHealthTestApp(h)

		resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("database down returns 503", func(t *testing.T) {
		h := NewHealthHandler(&stubPinger{err: errors.New("connection refused")})
		app := newHealthTestApp(h)

		resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}
