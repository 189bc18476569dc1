package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/runcondition"
	"github.com/aretw0/runcondition/internal/config"
	"github.com/aretw0/runcondition/internal/logging"
	"github.com/aretw0/runcondition/internal/presentation/tui"
	httpAdapter "github.com/aretw0/runcondition/pkg/adapters/http"
	"github.com/aretw0/runcondition/pkg/adapters/loam"
	"github.com/aretw0/runcondition/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/runcondition/pkg/adapters/redis"
	"github.com/aretw0/runcondition/pkg/observability"
	"github.com/aretw0/runcondition/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP evaluation server",
	Long: `Starts the evaluator as a JSON API over HTTP.
Builds are stored in Redis when redis.addr is configured, otherwise in memory.
Hosts record them with PUT /builds/{id} and POST /builds/{id}/causes.
Conditions are loaded from the conditions directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		applyServeFlags(cmd, &cfg)

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger := logging.New(level)

		store, closeStore := newBuildStore(cfg, logger)
		defer closeStore()

		conditions, err := loam.Open(cfg.ConditionsDir)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		gate := runcondition.New(
			runcondition.WithSource(store),
			runcondition.WithConditions(conditions),
			runcondition.WithHooks(metrics.Hooks()),
			runcondition.WithLogger(logger),
		)

		handler := httpAdapter.NewHandler(gate,
			httpAdapter.WithStore(store),
			httpAdapter.WithConditions(conditions),
			httpAdapter.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:              cfg.Listen,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if isTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, strings.TrimSpace(runcondition.Version))
		}
		return serve(cmd.Context(), srv, logger, cfg)
	},
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetString("port")
		cfg.Listen = ":" + port
	}
	if cmd.Flags().Changed("dir") {
		cfg.ConditionsDir, _ = cmd.Flags().GetString("dir")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
}

func newBuildStore(cfg config.Config, logger *slog.Logger) (ports.BuildStore, func()) {
	if cfg.Redis.Addr == "" {
		logger.Info("using in-memory build store")
		return memory.NewStore(), func() {}
	}

	store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		redisAdapter.WithPrefix(cfg.Redis.Prefix),
		redisAdapter.WithTTL(cfg.Redis.TTL),
	)
	logger.Info("using redis build store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("redis close failed", "error", err)
		}
	}
}

func serve(ctx context.Context, srv *http.Server, logger *slog.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "conditions", cfg.ConditionsDir)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutdown signal received")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop server: %w", err)
			}
		}
		logger.Info("server stopped gracefully")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides listen)")
	serveCmd.Flags().String("config", "", "Path to the configuration file (default runcondition.yaml)")
}
