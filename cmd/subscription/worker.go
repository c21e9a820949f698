package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"subscription-manager/internal/common/camunda"
	"subscription-manager/internal/common/observability"
	changesubscription "subscription-manager/internal/workers/subscription/change-subscription"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Serve subscription.change jobs from the Camunda broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context())
		},
	}
}

func runWorker(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	obs, err := observability.New(a.cfg.App.Name, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			a.log.Warn("observability shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	zeebe, err := camunda.NewClient(ctx, a.cfg.Camunda)
	if err != nil {
		return err
	}
	defer zeebe.Close()

	handler, err := changesubscription.NewHandler(changesubscription.HandlerOptions{
		AppConfig:     a.cfg,
		Camunda:       zeebe,
		Changer:       a.changer,
		Observability: obs,
		Logger:        a.log,
	})
	if err != nil {
		return err
	}
	if err := handler.Register(); err != nil {
		return err
	}
	defer handler.Close()

	server := newMetricsServer(a.cfg.Metrics.Address, func(ctx context.Context) error {
		return zeebe.HealthCheck(ctx)
	})
	serverErr := make(chan error, 1)
	go func() {
		a.log.Info("health/metrics server listening", map[string]interface{}{"address": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received, stopping worker", nil)
	case err := <-serverErr:
		return fmt.Errorf("health/metrics server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("health/metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	a.log.Info("worker stopped gracefully", nil)
	return nil
}

func newMetricsServer(addr string, check func(context.Context) error) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "healthy", http.StatusOK
		if err := check(r.Context()); err != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
