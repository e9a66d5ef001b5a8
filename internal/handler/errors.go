package handler

import (
	"errors"

	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// respondError maps service errors to HTTP answers. Unexpected errors are
// logged and hidden from the client.
func respondError(c fiber.Ctx, logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, port.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, port.ErrVolunteerNotFound),
		errors.Is(err, port.ErrMissionNotFound),
		errors.Is(err, port.ErrBlockedIPNotFound),
		errors.Is(err, port.ErrFlowNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, port.ErrTransient):
		logger.Error("store unavailable", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service temporarily unavailable"})
	default:
		logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func invalidBody(c fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
}
