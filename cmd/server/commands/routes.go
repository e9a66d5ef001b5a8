package commands

import (
	"time"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/handler"
	"github.com/arturoeanton/redcross-volunteers/internal/middleware"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"github.com/arturoeanton/redcross-volunteers/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"
)

// Server groups what the HTTP layer is built from.
type Server struct {
	Blocklist  port.BlocklistChecker
	Recorder   middleware.RequestRecorder
	Classifier middleware.ThreatClassifier

	Missions   *handler.MissionHandler
	Volunteers *handler.VolunteerHandler
	Donations  *handler.DonationHandler
	AI         *handler.AIHandler
	Admin      *handler.AdminHandler
}

// NewHTTPApp wires middleware and routes. The blocklist gate runs before
// request logging, so blocked requests are never recorded.
func NewHTTPApp(cfg *config.Config, srv Server, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute, // AI flows may take up to two minutes
		ProxyHeader:  cfg.ProxyHeader,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
	}))
	app.Use(middleware.Blocklist(srv.Blocklist, logger))
	app.Use(middleware.RequestLogger(srv.Recorder, srv.Classifier))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	// ── Public Routes ────────────────────────────────────────────────────
	api := app.Group("/api/v1")
	srv.Missions.Register(api)
	srv.Volunteers.Register(api)
	srv.Donations.Register(api)
	srv.AI.Register(api)

	// ── Admin Routes ─────────────────────────────────────────────────────
	admin := api.Group("/admin",
		middleware.JWTMiddleware(middleware.JWTConfig{
			Secret:    cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
			ExpiresIn: cfg.JWTTTL(),
		}),
		middleware.RequireRole(domain.RoleAdmin),
	)
	srv.Admin.Register(admin)
	srv.AI.RegisterAdmin(admin)

	return app
}
