package main

import (
	"context"
	"fmt"
	"os"

	"github.com/arturoeanton/redcross-volunteers/cmd/server/commands"
	"github.com/arturoeanton/redcross-volunteers/pkg/config"
	"github.com/arturoeanton/redcross-volunteers/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	app := &commands.AppContext{Ctx: context.Background()}

	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "Red Cross committee volunteer portal",
		Long:  `HTTP API for volunteer applications, mission registration, donations and the staff back office.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(app)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	serveCmd := commands.ServeCmd(app)
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.TokenCmd(app))
	rootCmd.AddCommand(commands.BlocklistCmd(app))

	if err := rootCmd.ExecuteContext(app.Ctx); err != nil {
		os.Exit(1)
	}
}

// initApp loads .env, configuration and the logger.
func initApp(app *commands.AppContext) error {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Cfg = cfg
	app.Logger = logger
	app.Logger.Debug("configuration loaded", zap.String("ai_provider", cfg.AIProvider))
	return nil
}
