package scenario

import (
	"math"
	"time"

	"BoostPull/internal/cycle"
	"BoostPull/internal/domain/models"
	"BoostPull/internal/temporal"
)

// Duration scenarios use a fixed, intentionally simpler tolerance pair than
// the configurable one applied at real validation.
const (
	scenarioMagnitudeTolerance = 15.0
	scenarioNoiseTolerance     = 5.0
)

// maxDurationFactor is the longest counterfactual horizon relative to the
// real window; beyond it there is no recorded data to replay.
const maxDurationFactor = 1.05

// simulateDuration replays a completed cycle at an alternative horizon:
// interpolate each asset's price at the counterfactual end time, re-derive
// the prediction via the temporal transfer function applied to the base
// prediction, and judge with the fixed scenario tolerances.
func simulateDuration(c *models.Cycle, paths map[string]*PricePath, target time.Duration) models.DurationScenario {
	out := models.DurationScenario{DurationMs: target.Milliseconds()}

	if float64(target) > float64(c.Duration())*maxDurationFactor {
		out.Status = models.DurationScenarioBeyondActual
		return out
	}
	out.Status = models.DurationScenarioOK

	endTime := c.StartTime.Add(target)
	hours := target.Hours()

	results := make([]models.AssetResult, 0, len(c.Results))
	for _, r := range c.Results {
		if c.IsExcluded(r.AssetID) {
			continue
		}
		path := paths[r.AssetID]
		if path == nil || r.StartPrice <= 0 {
			continue
		}
		entry, ok := snapshotEntry(c, r.AssetID)
		if !ok {
			continue
		}

		price := path.PriceAt(endTime)
		actual := (price - r.StartPrice) / r.StartPrice * 100
		predicted := entry.BasePrediction * temporal.Scale(hours, entry.Score.Classification, c.Mode)

		results = append(results, judge(r.AssetID, entry.Score.Classification, predicted, actual, r.StartPrice, price))
	}

	out.Results = results
	out.Metrics = cycle.AggregateMetrics(results, nil)
	return out
}

// judge applies the scenario variant of the direction+magnitude rule.
func judge(assetID string, class models.Classification, predicted, actual, startPrice, endPrice float64) models.AssetResult {
	r := models.AssetResult{
		AssetID:        assetID,
		Classification: class,
		Predicted:      predicted,
		Actual:         actual,
		StartPrice:     startPrice,
		EndPrice:       endPrice,
		AbsError:       math.Abs(predicted - actual),
	}
	switch {
	case class == models.ClassRuidoso || predicted == 0:
		r.Method = "noise"
		r.Correct = math.Abs(actual) <= scenarioNoiseTolerance
	case (predicted >= 0) != (actual >= 0):
		r.Method = "direction"
		r.Correct = false
	default:
		r.Method = "direction_magnitude"
		r.Correct = r.AbsError <= scenarioMagnitudeTolerance
	}
	return r
}

func snapshotEntry(c *models.Cycle, assetID string) (models.SnapshotEntry, bool) {
	for _, e := range c.Snapshot {
		if e.Asset.ID == assetID {
			return e, true
		}
	}
	return models.SnapshotEntry{}, false
}
