package middleware

import (
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// Blocklist rejects requests from blocked IPs before anything else runs.
// A failing lookup lets the request through.
func Blocklist(checker port.BlocklistChecker, logger *zap.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		ip := c.IP()

		blocked, err := checker.IsBlocked(c.Context(), ip)
		if err != nil {
			logger.Warn("blocklist lookup failed, allowing request",
				zap.String("ip", ip),
				zap.Error(err),
			)
			return c.Next()
		}
		if blocked {
			logger.Info("blocked ip rejected", zap.String("ip", ip), zap.String("path", c.Path()))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access denied",
			})
		}

		return c.Next()
	}
}
