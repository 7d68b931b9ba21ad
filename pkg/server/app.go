package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"BoostPull/internal/domain/models"
	"BoostPull/internal/scenario"
	"BoostPull/internal/usecase"
	"BoostPull/pkg/cache"
	pkgch "BoostPull/pkg/clickhouse"
	"BoostPull/pkg/config"
	applogger "BoostPull/pkg/logger"
)

// App encapsulates the application lifecycle: the snapshot scheduler, the
// completion poller, the optional live observation collector, and the
// metrics endpoint.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	snapshot  *usecase.SnapshotRunner
	completer *usecase.CompletionRunner
	scenarios *usecase.ScenarioRunner
	collector *usecase.ObservationCollector
	cache     cache.Service
	chClient  *pkgch.Client

	metricsSrv *http.Server
}

// New creates a new App instance with all dependencies. collector and
// chClient may be nil when the corresponding backends are disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	snapshot *usecase.SnapshotRunner,
	completer *usecase.CompletionRunner,
	scenarios *usecase.ScenarioRunner,
	collector *usecase.ObservationCollector,
	c cache.Service,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		snapshot:  snapshot,
		completer: completer,
		scenarios: scenarios,
		collector: collector,
		cache:     c,
		chClient:  chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.cfg.Metrics.Enabled {
		a.startMetricsServer()
	}

	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			// live observations are an enhancement; cycles run without them
			a.log.Warn("observation collector failed to start", applogger.Error(err))
		}
	}

	if a.cfg.Scheduler.SnapshotEnabled {
		go a.snapshotLoop(ctx)
	}
	go a.completionLoop(ctx)

	a.log.Info("scheduler started",
		applogger.String("mode", a.cfg.Scheduler.Mode),
		applogger.Duration("cycle_duration", a.cfg.Scheduler.CycleDuration),
		applogger.Duration("completion_poll", a.cfg.Scheduler.CompletionPoll))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// snapshotLoop opens a new cycle on every tick. The first cycle opens
// immediately.
func (a *App) snapshotLoop(ctx context.Context) {
	a.runSnapshot(ctx)
	ticker := time.NewTicker(a.cfg.Scheduler.SnapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runSnapshot(ctx)
		}
	}
}

func (a *App) runSnapshot(ctx context.Context) {
	if _, err := a.snapshot.Run(ctx); err != nil {
		a.log.Error("snapshot failed", applogger.Error(err))
	}
}

// completionLoop polls for due cycles, completes them, and replays every
// completed cycle through the scenario simulator.
func (a *App) completionLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Scheduler.CompletionPoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			completed, err := a.completer.Run(ctx)
			if err != nil {
				a.log.Error("completion poll failed", applogger.Error(err))
				continue
			}
			for _, c := range completed {
				a.replay(ctx, c.ID, c.Mode)
			}
		}
	}
}

func (a *App) replay(ctx context.Context, cycleID, mode string) {
	active := a.activeTradingConfig(ctx, mode)
	if _, err := a.scenarios.Replay(ctx, cycleID, active); err != nil {
		a.log.Warn("scenario replay failed",
			applogger.String("cycle", cycleID),
			applogger.Error(err))
	}
	if _, err := a.scenarios.SuggestCalibration(ctx, mode); err != nil {
		a.log.Warn("calibration pass failed", applogger.Error(err))
	}
}

// activeTradingConfig reads the stored recommendation for the mode, falling
// back to the default profile.
func (a *App) activeTradingConfig(ctx context.Context, mode string) (cfg models.TradingConfig) {
	cfg = scenario.DefaultTradingConfig()
	if a.cache == nil {
		return cfg
	}
	var stored models.TradingConfig
	found, err := cache.GetLenient(ctx, a.cache, "calibration:recommended:"+mode, &stored)
	if err == nil && found && stored.TakeProfitPct > 0 && stored.StopLossPct > 0 {
		return stored
	}
	return cfg
}

func (a *App) startMetricsServer() {
	mux := http.NewServeMux()
	path := a.cfg.Metrics.Path
	if path == "" {
		path = "/metrics"
	}
	mux.Handle(path, promhttp.Handler())
	a.metricsSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Metrics.Port),
		Handler: mux,
	}
	go func() {
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server error", applogger.Error(err))
		}
	}()
	a.log.Info("metrics server started", applogger.Int("port", a.cfg.Metrics.Port))
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if a.collector != nil {
		if err := a.collector.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("collector stop error", applogger.Error(err))
		}
	}

	if a.metricsSrv != nil {
		if err := a.metricsSrv.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("metrics shutdown error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
