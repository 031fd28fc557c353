package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/facelens-app/facelens/internal/domain"
)

// errorBody is the envelope every failed request gets.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorHandler maps errors returned by handlers to JSON responses.
// Domain errors carry their own status and code; anything unknown
// becomes an opaque 500 so internals never leak to clients.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			if appErr.StatusCode >= 500 {
				logger.Error("request failed",
					slog.String("code", appErr.Code),
					slog.String("path", c.Path()),
					slog.Any("error", appErr.Err),
				)
			}
			return c.Status(appErr.StatusCode).JSON(fiber.Map{
				"error": errorBody{Code: appErr.Code, Message: appErr.Message},
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": errorBody{Code: "HTTP_ERROR", Message: fiberErr.Message},
			})
		}

		logger.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Path()),
			slog.String("method", c.Method()),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": errorBody{Code: domain.ErrInternal.Code, Message: domain.ErrInternal.Message},
		})
	}
}
