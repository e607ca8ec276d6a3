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
	"github.com/mark3labs/rentalwizard/internal/backendsim"
	"github.com/mark3labs/rentalwizard/internal/logger"
	"github.com/mark3labs/rentalwizard/internal/metrics"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr string
}

var serveBackendCmd = &cobra.Command{
	Use:   "serve-backend",
	Short: "Run an in-memory rental-object API for local development",
	Long: `Serve the rental-object REST API from memory. Point --backend-url of
other commands at it to exercise the HTTP client end to end. Data is lost
when the server stops.`,
	Args: cobra.NoArgs,
	RunE: runServeBackend,
}

func init() {
	serveBackendCmd.Flags().StringVar(&serveFlags.addr, "addr", "127.0.0.1:8080", "Listen address")
}

func runServeBackend(cmd *cobra.Command, args []string) error {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := backendsim.NewRouter(backendsim.NewRepository())
	if cfg.MetricsAddr != "" {
		// Go runtime and process collectors only; the simulator records no wizard events.
		router.GET("/metrics", gin.WrapH(metrics.New().Handler()))
	}

	srv := &http.Server{
		Addr:              serveFlags.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Rental-object API listening on http://%s/api/rental-objects\n", serveFlags.addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down backend simulator")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
