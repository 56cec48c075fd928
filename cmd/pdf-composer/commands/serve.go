package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-composer/internal/api"
	"github.com/spherical/pdf-composer/internal/compose"
	"github.com/spherical/pdf-composer/internal/supervisor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP job API",
	Long: `Run the HTTP job API. Jobs are submitted with POST /api/v1/jobs/images or
/api/v1/jobs/pages and polled with GET /api/v1/jobs/current. One job runs at a
time; submissions while a job is running are rejected with 409.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	layout, err := cfg.Layout.Parameters()
	if err != nil {
		return err
	}

	service := compose.NewService(cfg.PDF.DocumentOptions(), logger)
	sup := supervisor.New(service, logger)

	opts := api.DefaultOptions()
	opts.RequestTimeout = cfg.Server.ReadTimeout
	opts.Layout = layout
	opts.Output = cfg.Output.Path

	addr := cfg.Address()
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(logger, sup, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var serveErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
			logger.Error().Err(err).Msg("Server error")
		}
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}
	if err := sup.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("running job did not stop before shutdown deadline")
	}

	logger.Info().Msg("Server stopped")
	return serveErr
}
