package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nestlink/server/internal/api"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the presentation API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			logger.Info("Generating listing catalog...")
			if err := a.services.Catalog.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			a.scheduler.Start()

			if logger.IsLevelEnabled(logrus.DebugLevel) {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}
			router := gin.New()
			router.Use(gin.Recovery(), api.RequestLogger(logger))
			api.SetupRoutes(router, api.NewHandler(a.services, logger), cfg.Server.AllowedOrigins)

			srv := &http.Server{
				Addr:    cfg.Address(),
				Handler: router,
			}

			go func() {
				logger.WithField("address", srv.Addr).Info("Starting server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Fatal("Server failed to start")
				}
			}()

			wait := gfshutdown.GracefulShutdown(
				context.Background(),
				cfg.Server.ShutdownTimeout,
				map[string]gfshutdown.Operation{
					"http-server": func(ctx context.Context) error {
						logger.Info("Shutting down HTTP server")
						return srv.Shutdown(ctx)
					},
					"catalog-refresh": func(ctx context.Context) error {
						a.scheduler.Stop()
						return nil
					},
				},
			)

			exitCode := <-wait
			logger.WithField("exit_code", exitCode).Info("Server stopped")
			if exitCode != 0 {
				return fmt.Errorf("shutdown finished with exit code %d", exitCode)
			}
			return nil
		},
	}
}
