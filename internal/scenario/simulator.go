// Package scenario replays completed cycles under alternative horizons and
// alternative trade-management rules to recommend better parameters.
package scenario

import (
	"errors"
	"sort"
	"time"

	"BoostPull/internal/domain/models"
	applogger "BoostPull/pkg/logger"
)

// ErrCycleNotCompleted rejects simulation over a cycle that has no realized
// outcomes yet.
var ErrCycleNotCompleted = errors.New("scenario: cycle is not completed")

// DefaultDurationGrid is the set of counterfactual horizons evaluated when
// the caller does not supply its own.
var DefaultDurationGrid = []time.Duration{
	1 * time.Hour,
	3 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
	48 * time.Hour,
}

// Simulator is the counterfactual scenario engine. Stateless: every call
// works purely from the completed cycle and the recorded observations.
type Simulator struct {
	log *applogger.Logger
}

// NewSimulator creates a simulator.
func NewSimulator(log *applogger.Logger) *Simulator {
	return &Simulator{log: log}
}

// Simulate replays a completed cycle: duration scenarios across the grid and
// trading scenarios for the fixed profiles plus the active configuration.
// Scenarios are ranked by composite score; the top one becomes the
// recommended configuration.
func (s *Simulator) Simulate(c *models.Cycle, observations map[string][]models.PriceObservation, active models.TradingConfig, durations []time.Duration) (*models.ScenarioReport, error) {
	if c == nil || c.Status != models.CycleCompleted {
		return nil, ErrCycleNotCompleted
	}
	if len(durations) == 0 {
		durations = DefaultDurationGrid
	}

	paths := s.buildPaths(c, observations)

	report := &models.ScenarioReport{CycleID: c.ID, Mode: c.Mode}
	for _, d := range durations {
		report.Durations = append(report.Durations, simulateDuration(c, paths, d))
	}

	configs := make([]models.TradingConfig, 0, len(tradingProfiles)+1)
	configs = append(configs, tradingProfiles...)
	if active.Name == "" {
		active.Name = "active"
	}
	configs = append(configs, active)

	for _, cfg := range configs {
		report.Trading = append(report.Trading, simulateTrading(c, paths, cfg))
	}
	sort.Slice(report.Trading, func(i, j int) bool {
		return report.Trading[i].Score > report.Trading[j].Score
	})
	if len(report.Trading) > 0 {
		report.Trading[0].Recommended = true
		top := report.Trading[0].Config
		report.Recommended = &top
	}

	s.log.Debug("scenario simulation finished",
		applogger.String("cycle_id", c.ID),
		applogger.Int("durations", len(report.Durations)),
		applogger.Int("trading_configs", len(report.Trading)))
	return report, nil
}

// buildPaths reconstructs one price path per asset that produced a result.
// The resolved completion price comes from the recorded end price of the
// asset's result row.
func (s *Simulator) buildPaths(c *models.Cycle, observations map[string][]models.PriceObservation) map[string]*PricePath {
	endPrices := make(map[string]float64, len(c.Results))
	for _, r := range c.Results {
		endPrices[r.AssetID] = r.EndPrice
	}

	paths := make(map[string]*PricePath, len(c.Snapshot))
	for _, e := range c.Snapshot {
		if e.Asset.Price <= 0 {
			continue
		}
		paths[e.Asset.ID] = BuildPath(e.Asset.Price, c.StartTime, observations[e.Asset.ID], endPrices[e.Asset.ID], c.EndTime)
	}
	return paths
}
