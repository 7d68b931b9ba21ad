package usecase

import (
	"context"
	"fmt"
	"time"

	"BoostPull/internal/cycle"
	"BoostPull/internal/domain/models"
	drepo "BoostPull/internal/domain/repository"
	"BoostPull/internal/scenario"
	"BoostPull/internal/temporal"
	"BoostPull/pkg/cache"
	"BoostPull/pkg/logger"
)

const (
	recommendedKeyPrefix = "calibration:recommended:"
	suggestionsKeyPrefix = "calibration:suggestions:"

	recommendationTTL = 30 * 24 * time.Hour
)

// ScenarioRunner replays completed cycles through the counterfactual
// simulator and persists the recommended trading configuration.
type ScenarioRunner struct {
	manager   *cycle.Manager
	obs       drepo.ObservationStore
	simulator *scenario.Simulator
	cache     cache.Service
	log       *logger.Logger
}

// NewScenarioRunner creates a scenario runner.
func NewScenarioRunner(manager *cycle.Manager, obs drepo.ObservationStore, sim *scenario.Simulator, c cache.Service, log *logger.Logger) *ScenarioRunner {
	return &ScenarioRunner{manager: manager, obs: obs, simulator: sim, cache: c, log: log}
}

// Replay simulates alternative durations and trading configurations for one
// completed cycle and stores the recommended configuration for the cycle's
// mode.
func (r *ScenarioRunner) Replay(ctx context.Context, cycleID string, active models.TradingConfig) (*models.ScenarioReport, error) {
	c, err := r.manager.Get(ctx, cycleID)
	if err != nil {
		return nil, err
	}

	observations, err := r.loadObservations(ctx, c)
	if err != nil {
		return nil, err
	}

	report, err := r.simulator.Simulate(c, observations, active, scenario.DefaultDurationGrid)
	if err != nil {
		return nil, err
	}

	if report.Recommended != nil && r.cache != nil {
		key := recommendedKeyPrefix + c.Mode
		if err := r.cache.Set(ctx, key, report.Recommended, recommendationTTL); err != nil {
			r.log.Warn("store recommendation failed", logger.Error(err))
		} else {
			r.log.Info("trading recommendation stored",
				logger.String("cycle", c.ID),
				logger.String("mode", c.Mode),
				logger.String("profile", report.Recommended.Name))
		}
	}
	return report, nil
}

func (r *ScenarioRunner) loadObservations(ctx context.Context, c *models.Cycle) (map[string][]models.PriceObservation, error) {
	observations := make(map[string][]models.PriceObservation, len(c.Snapshot))
	for _, e := range c.Snapshot {
		series, err := r.obs.List(ctx, c.ID, e.Asset.ID)
		if err != nil {
			return nil, fmt.Errorf("load observations for %s: %w", e.Asset.ID, err)
		}
		if len(series) > 0 {
			observations[e.Asset.ID] = series
		}
	}
	return observations, nil
}

// SuggestCalibration compares modeled horizon multipliers against realized
// outcomes over the completed-cycle history and stores any divergence
// suggestions for operator review.
func (r *ScenarioRunner) SuggestCalibration(ctx context.Context, mode string) ([]temporal.Suggestion, error) {
	completed, err := r.manager.ListCompleted(ctx, 0)
	if err != nil {
		return nil, err
	}

	sameMode := completed[:0]
	for _, c := range completed {
		if c.Mode == mode {
			sameMode = append(sameMode, c)
		}
	}

	suggestions := temporal.Calibrate(sameMode)
	if len(suggestions) > 0 && r.cache != nil {
		if err := r.cache.Set(ctx, suggestionsKeyPrefix+mode, suggestions, recommendationTTL); err != nil {
			r.log.Warn("store calibration suggestions failed", logger.Error(err))
		}
	}
	return suggestions, nil
}
