package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"caption-eval-compare/backend/internal/apigateway"
	"caption-eval-compare/backend/internal/datastore"
	"caption-eval-compare/backend/internal/ingest"
	"caption-eval-compare/backend/internal/resultapi"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var preload string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			src, err := ingest.FromConfig(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			store := datastore.NewSessionStore()
			in := ingest.New(src, store, a.log)
			if preload != "" {
				if _, err := in.Ingest(ctx, preload); err != nil {
					return err
				}
			}

			unit, metric := a.cfg.AnalysisDefaults()
			h := resultapi.NewHandler(in, store, resultapi.Defaults{DelayUnit: unit, CorrectionMetric: metric}, a.log)

			if a.log.IsLevelEnabled(logrus.DebugLevel) {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
				Handler:           apigateway.SetupRouter(h, a.cfg.Server.APIToken, a.log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.WithField("addr", srv.Addr).WithField("source", src.String()).Info("starting server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("failed to start server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&preload, "ingest", "", "input to load before serving")
	return cmd
}
