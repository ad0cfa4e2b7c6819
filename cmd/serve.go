package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/ellavondegurechaff/packforge/backend"
	"github.com/ellavondegurechaff/packforge/backend/handlers"
	"github.com/ellavondegurechaff/packforge/packforge"
	"github.com/ellavondegurechaff/packforge/packforge/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		slog.Info("Starting PackForge",
			slog.String("version", version),
			slog.String("commit", commit),
			slog.String("driver", cfg.DB.Driver),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := packforge.New(ctx, *cfg, version, commit)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		app.Start(ctx)

		webApp, err := handlers.NewWebApp(app)
		if err != nil {
			return err
		}
		server := backend.NewServer(webApp)

		errCh := make(chan error, 1)
		go func() {
			address := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
			slog.Info("Starting backend server", slog.String("address", address))
			errCh <- server.Listen(address)
		}()

		select {
		case err = <-errCh:
			slog.Error("Server stopped", slog.Any("error", err))
		case <-ctx.Done():
			slog.Info("Shutting down backend server...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if serr := server.ShutdownWithContext(shutdownCtx); serr != nil {
			slog.Error("Server shutdown error", slog.Any("error", serr))
		}
		if cerr := app.Close(shutdownCtx); cerr != nil {
			slog.Error("Refund queue shutdown error", slog.Any("error", cerr))
		}

		slog.Info("Backend server shutdown complete")
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
