package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/api/handlers"
	"github.com/cloo-solutions/supportdesk/internal/config"
	"github.com/cloo-solutions/supportdesk/internal/jobs"
	"github.com/cloo-solutions/supportdesk/internal/lock"
	"github.com/cloo-solutions/supportdesk/internal/logger"
	"github.com/cloo-solutions/supportdesk/internal/metrics"
	"github.com/cloo-solutions/supportdesk/internal/server"
	"github.com/cloo-solutions/supportdesk/internal/service"
	"github.com/cloo-solutions/supportdesk/internal/telemetry"
)

const (
	feederLockKey = "supportdesk:feeder"
	shutdownGrace = 30 * time.Second
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the support desk API server and the background log miner",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides SUPPORTDESK_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.HasSentry() {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: cfg.TracesSampleRate(),
			Debug:            cfg.Debug,
		}, log)
		if err != nil {
			log.Warn("telemetry init failed, continuing without tracing", zap.Error(err))
		} else {
			defer shutdownTelemetry()
		}
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	be, err := openBackend(ctx, cfg, log, backendOptions{migrate: !noMigrate})
	if err != nil {
		return err
	}
	defer be.close()

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)
	persona := personaFromConfig(cfg)

	responder := service.NewResponder(be.store, service.ResponderConfig{
		Persona:  persona,
		Logger:   log,
		Recorder: recorder,
	})
	if err := responder.Initialize(ctx); err != nil {
		// Respond reloads on every turn, so a store that comes up later heals.
		log.Warn("initial knowledge snapshot failed", zap.Error(err))
		telemetry.CaptureMessage(ctx, "initial knowledge snapshot failed: "+err.Error())
	}

	miner := service.NewLogMiner(be.store, service.LogMinerConfig{
		Window:         cfg.FeederWindow,
		MinOccurrences: cfg.FeederMinOccurrences,
		Recorder:       recorder,
	}, log)

	var processor jobs.JobProcessor = miner
	if cfg.HasRedis() {
		client, err := lock.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer func() { _ = client.Close() }()
		processor = jobs.NewLockedProcessor(miner, lock.NewRedisLocker(client, cfg.FeederInterval), feederLockKey, log)
		log.Info("log miner guarded by redis lease", zap.String("key", feederLockKey))
	}

	worker := jobs.NewWorker(processor, cfg.FeederInterval, log)
	go worker.Start(ctx)

	sessions := service.NewSessionService(be.chatLogs, worker, persona, log)
	adminSvc := service.NewAdminService(be.admin, miner, log)

	routerCfg := server.RouterConfig{
		ChatHandler: handlers.NewChatHandler(responder, sessions, log),
		Gatherer:    prometheus.DefaultGatherer,
		Logger:      log,
	}
	if cfg.HasAdmin() {
		routerCfg.AdminHandler = handlers.NewAdminHandler(adminSvc, sessions)
		routerCfg.AdminAPIKey = cfg.AdminAPIKey
	} else {
		log.Warn("SUPPORTDESK_ADMIN_API_KEY not set, admin routes disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("port", cfg.Port),
			zap.Bool("memory_store", be.memory),
			zap.Bool("admin", cfg.HasAdmin()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		log.Info("shutting down")
	case err := <-errCh:
		worker.Stop()
		return fmt.Errorf("server failed: %w", err)
	}

	worker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
