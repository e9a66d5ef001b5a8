package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arturoeanton/redcross-volunteers/internal/adapter/ai"
	"github.com/arturoeanton/redcross-volunteers/internal/adapter/flows"
	"github.com/arturoeanton/redcross-volunteers/internal/adapter/store"
	"github.com/arturoeanton/redcross-volunteers/internal/audit"
	"github.com/arturoeanton/redcross-volunteers/internal/handler"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"github.com/arturoeanton/redcross-volunteers/internal/security"
	"github.com/arturoeanton/redcross-volunteers/internal/service"
	"github.com/arturoeanton/redcross-volunteers/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ServeCmd runs the HTTP API until SIGINT or SIGTERM.
func ServeCmd(app *AppContext) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), app, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, app *AppContext, migrate bool) error {
	cfg, logger := app.Cfg, app.Logger

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting volunteer portal",
		zap.String("port", cfg.Port),
		zap.String("ai_provider", cfg.AIProvider),
		zap.Bool("redis_cache", cfg.RedisAddr != ""),
	)

	// ── Database ─────────────────────────────────────────────────────────
	pg, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer pg.Close()

	if migrate {
		applied, err := pg.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied", zap.Strings("files", applied))
	}

	rdb, err := app.openRedis(ctx)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}
	blocklist := store.NewCachedBlocklist(pg, rdb, cfg.BlocklistCacheTTL, logger)

	// ── Threat detection ─────────────────────────────────────────────────
	var extra []security.Signature
	if cfg.ThreatPatternsFile != "" {
		extra, err = security.LoadSignatures(cfg.ThreatPatternsFile)
		if err != nil {
			return fmt.Errorf("load threat patterns: %w", err)
		}
	}
	detector := security.NewDetector(extra...)
	logger.Info("threat detector ready", zap.Int("signatures", len(detector.Signatures())))

	// ── AI flows (Strategy Pattern) ──────────────────────────────────────
	provider, err := newAIProvider(ctx, cfg)
	if err != nil {
		return err
	}
	engine := port.NewFlowEngine(
		flows.NewRecommendationFlow(provider),
		flows.NewDescriptionFlow(provider),
		flows.NewFAQFlow(provider, cfg.FAQKnowledge),
	)

	// ── Services ─────────────────────────────────────────────────────────
	volunteerService := service.NewVolunteerService(pg, logger)
	missionService := service.NewMissionService(pg, logger)
	donationService := service.NewDonationService(pg, logger)
	registrationService := service.NewRegistrationService(pg, logger)
	flowService := service.NewFlowService(engine, pg, pg, logger)

	// ── Request log recorder ─────────────────────────────────────────────
	recorder := audit.NewRecorder(pg, logger, audit.Options{
		QueueSize: cfg.AuditQueueSize,
		Workers:   cfg.AuditWorkers,
	})
	recorder.Start()

	httpApp := NewHTTPApp(cfg, Server{
		Blocklist:  blocklist,
		Recorder:   recorder,
		Classifier: detector,
		Missions:   handler.NewMissionHandler(missionService, registrationService, logger),
		Volunteers: handler.NewVolunteerHandler(volunteerService, logger),
		Donations:  handler.NewDonationHandler(donationService, logger),
		AI:         handler.NewAIHandler(flowService, logger),
		Admin:      handler.NewAdminHandler(blocklist, pg, volunteerService, missionService, donationService, logger),
	}, logger)

	// ── Start ────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("fiber listening", zap.String("port", cfg.Port))
		return httpApp.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true})
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpApp.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
		// Requests are done; flush what they queued.
		if err := recorder.Close(shutdownCtx); err != nil {
			return fmt.Errorf("drain request logs: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("stopped")
	return nil
}

func newAIProvider(ctx context.Context, cfg *config.Config) (port.AIProvider, error) {
	switch cfg.AIProvider {
	case "gemini":
		return ai.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "ollama":
		return ai.NewOllamaProvider(ai.OllamaConfig{
			BaseURL:     cfg.OllamaURL,
			Model:       cfg.OllamaModel,
			Token:       cfg.OllamaToken,
			Temperature: cfg.OllamaTemp,
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
}
