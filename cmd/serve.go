package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"zhujian/internal/bootstrap"
	"zhujian/internal/bootstrap/config"
	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		// Credential changes take effect without a restart.
		if err := config.WatchFile(ctx, cfgFile, func() {
			cfg, err := config.Load(ctx, cfgFile)
			if err != nil {
				logging.Warn(ctx, "config reload failed", slog.Any("err", errs.Loggable(err)))
				return
			}
			svc.Settings.Update(cfg.Doubao)
			logging.Info(ctx, "chat credentials reloaded", slog.Bool("configured", cfg.Doubao.Configured()))
		}); err != nil {
			logging.Warn(ctx, "config watch unavailable", slog.Any("err", errs.Loggable(err)))
		}

		server := &http.Server{
			Addr:              app.Config.HTTP.Addr,
			Handler:           svc.Server.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening", slog.String("addr", server.Addr))
			errCh <- server.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return errs.Wrap(err, "shutdown http server")
			}
			return nil
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return errs.Wrap(err, "serve http")
		}
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
