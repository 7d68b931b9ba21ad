package usecase

import (
	"context"
	"fmt"
	"time"

	"BoostPull/internal/cycle"
	"BoostPull/internal/domain/models"
	drepo "BoostPull/internal/domain/repository"
	"BoostPull/internal/scoring"
	"BoostPull/pkg/cache"
	"BoostPull/pkg/logger"
)

const calibrationKeyPrefix = "calibration:active:"

// SnapshotRunner scores the asset universe and opens a new prediction cycle.
type SnapshotRunner struct {
	market   drepo.MarketData
	signals  drepo.SignalsProvider
	engine   *scoring.Engine
	manager  *cycle.Manager
	cache    cache.Service
	metrics  drepo.Metrics
	log      *logger.Logger
	mode     string
	universe int
	duration time.Duration
}

// NewSnapshotRunner creates a snapshot runner. signals may be nil when no
// enrichment source is configured.
func NewSnapshotRunner(
	market drepo.MarketData,
	signals drepo.SignalsProvider,
	engine *scoring.Engine,
	manager *cycle.Manager,
	c cache.Service,
	metrics drepo.Metrics,
	log *logger.Logger,
	mode string,
	universe int,
	duration time.Duration,
) *SnapshotRunner {
	return &SnapshotRunner{
		market:   market,
		signals:  signals,
		engine:   engine,
		manager:  manager,
		cache:    c,
		metrics:  metrics,
		log:      log,
		mode:     mode,
		universe: universe,
		duration: duration,
	}
}

// Run fetches the universe, scores every asset, and opens a cycle over the
// configured window.
func (r *SnapshotRunner) Run(ctx context.Context) (*models.Cycle, error) {
	start := time.Now()

	cfg, err := scoring.NewAlgorithmConfig(r.mode)
	if err != nil {
		return nil, fmt.Errorf("build config: %w", err)
	}

	assets, err := r.market.TopAssets(ctx, r.universe)
	if err != nil {
		r.metrics.RecordError("market_fetch")
		return nil, fmt.Errorf("fetch universe: %w", err)
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("empty asset universe")
	}

	cal := r.loadCalibration(ctx)

	snapshot := make([]models.SnapshotEntry, 0, len(assets))
	for _, asset := range assets {
		sig := r.fetchSignals(ctx, asset.ID)
		score := r.engine.Score(asset, sig, cfg, cal)
		snapshot = append(snapshot, models.SnapshotEntry{
			Asset:   asset,
			Signals: sig,
			Score:   score,
		})
	}

	c, err := r.manager.Create(ctx, snapshot, cfg, r.duration, r.mode)
	if err != nil {
		return nil, fmt.Errorf("create cycle: %w", err)
	}

	r.metrics.RecordScoreLatency(time.Since(start).Seconds())
	r.log.Info("snapshot cycle opened",
		logger.String("cycle", c.ID),
		logger.Int("assets", len(snapshot)),
		logger.String("mode", r.mode),
		logger.Duration("window", r.duration))
	return c, nil
}

func (r *SnapshotRunner) fetchSignals(ctx context.Context, assetID string) *models.ExternalSignals {
	if r.signals == nil {
		return nil
	}
	sig, err := r.signals.Signals(ctx, assetID)
	if err != nil {
		r.metrics.RecordError("signals_fetch")
		return nil
	}
	return sig
}

// loadCalibration reads the active calibration for the mode; missing or
// unreadable calibration means none is applied.
func (r *SnapshotRunner) loadCalibration(ctx context.Context) *models.Calibration {
	if r.cache == nil {
		return nil
	}
	var cal models.Calibration
	found, err := cache.GetLenient(ctx, r.cache, calibrationKeyPrefix+r.mode, &cal)
	if err != nil || !found {
		return nil
	}
	return &cal
}

// AssetIDs returns the asset ids of a snapshot; used by the completion runner
// to request prices.
func AssetIDs(c *models.Cycle) []string {
	ids := make([]string, 0, len(c.Snapshot))
	for _, e := range c.Snapshot {
		ids = append(ids, e.Asset.ID)
	}
	return ids
}
