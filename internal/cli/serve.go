package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solrq/solrq"
	"github.com/solrq/solrq/internal/config"
	"github.com/solrq/solrq/internal/logger"
	"github.com/solrq/solrq/internal/metrics"
	"github.com/solrq/solrq/internal/schema"
	chiTransport "github.com/solrq/solrq/internal/transport/chi"
	"github.com/solrq/solrq/internal/version"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Run the search gateway HTTP server",
		Long:          "Serve the search gateway: sanitized search over a Solr core, with health and metrics endpoints.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(rootOpts, configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to the gateway config file")

	return cmd
}

func runServe(rootOpts *RootOptions, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if rootOpts.Verbose {
		level = "debug"
	}
	log, err := logger.New(cfg.Logging.Env, level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting solrq gateway",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", cfg.Logging.Env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("solr_url", cfg.Solr.URL),
	)

	sch, err := schema.Load(cfg.Schema.Path)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	client, err := solrq.New(cfg.Solr.URL,
		solrq.WithTimeout(time.Duration(cfg.Solr.TimeoutSec)*time.Second),
		solrq.WithLogger(log),
		solrq.WithMetrics(registry),
	)
	if err != nil {
		return err
	}

	server := chiTransport.NewServer(client, sch, cfg.Solr.Handler, log).
		WithMetrics(httpMetrics, registry).
		WithAPIKeys(cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
	}

	log.Info("Server stopped gracefully")
	return nil
}
