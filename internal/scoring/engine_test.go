package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BoostPull/internal/domain/models"
)

func normalConfig(t *testing.T) *models.AlgorithmConfig {
	t.Helper()
	cfg, err := NewAlgorithmConfig(models.ModeNormal)
	require.NoError(t, err)
	return cfg
}

func sampleAsset() models.AssetMetrics {
	return models.AssetMetrics{
		ID:         "testcoin",
		Symbol:     "TST",
		Price:      1.2,
		MarketCap:  80_000_000,
		Volume24h:  12_000_000,
		Change24h:  4.5,
		Change7d:   -12,
		ATH:        9.0,
		ATL:        1.0,
		CapturedAt: time.Now(),
	}
}

func TestNewAlgorithmConfigDefaults(t *testing.T) {
	cfg := normalConfig(t)

	assert.Equal(t, models.ModeNormal, cfg.Mode)
	assert.Equal(t, 0.6, cfg.MetaWeights.Potential)
	assert.Equal(t, 0.4, cfg.MetaWeights.Resistance)
	assert.Equal(t, 0.65, cfg.Classification.InvertibleMinBoost)
	assert.Equal(t, 12.0, cfg.Prediction.InvertibleTarget)
	assert.Equal(t, 5.0, cfg.Prediction.MagnitudeTolerance)
}

func TestNewAlgorithmConfigSpeculativeOverrides(t *testing.T) {
	cfg, err := NewAlgorithmConfig(models.ModeSpeculative)
	require.NoError(t, err)

	assert.Equal(t, 0.65, cfg.MetaWeights.Potential)
	assert.Equal(t, 0.35, cfg.MetaWeights.Resistance)
	assert.Equal(t, 0.60, cfg.Classification.InvertibleMinBoost)
	assert.Equal(t, 1_000_000_000.0, cfg.Classification.InvertibleMaxMarketCap)
	assert.Equal(t, 20.0, cfg.Prediction.InvertibleTarget)
	assert.Equal(t, 8.0, cfg.Prediction.MagnitudeTolerance)
}

func TestValidateConfigCollectsAllViolations(t *testing.T) {
	cfg := normalConfig(t)
	cfg.MetaWeights = models.MetaWeights{Potential: 0.8, Resistance: 0.4}  // sums to 1.2
	cfg.Classification.InvertibleMinBoost = 0.30                          // below apalancado 0.40
	cfg.Thresholds.MidCap = cfg.Thresholds.LargeCap * 2                   // not descending

	err := ValidateConfig(cfg)
	require.Error(t, err)

	var cv *ConfigViolations
	require.ErrorAs(t, err, &cv)
	assert.Len(t, cv.Violations, 3)
}

func TestScoreBoostPowerInRange(t *testing.T) {
	cfg := normalConfig(t)
	e := NewEngine()

	assets := []models.AssetMetrics{
		sampleAsset(),
		{ID: "big", Price: 50_000, MarketCap: 900_000_000_000, Volume24h: 30_000_000_000, Change24h: -1, Change7d: 2, ATH: 69_000, ATL: 60},
		{ID: "dead", Price: 0.001, MarketCap: 500_000, Volume24h: 0, Change24h: 0, Change7d: 0, ATH: 0.001, ATL: 0.001},
	}
	for _, a := range assets {
		r := e.Score(a, nil, cfg, nil)
		assert.GreaterOrEqual(t, r.BoostPower, 0.0, "asset %s", a.ID)
		assert.LessOrEqual(t, r.BoostPower, 1.0, "asset %s", a.ID)
		assert.NotEmpty(t, r.Reason)
	}
}

func TestScoreRuidosoPredictsZero(t *testing.T) {
	cfg := normalConfig(t)
	e := NewEngine()

	// a large mature asset far from its low scores below every threshold
	a := models.AssetMetrics{
		ID: "mature", Price: 60_000, MarketCap: 900_000_000_000,
		Volume24h: 5_000_000_000, Change24h: 25, Change7d: 10,
		ATH: 69_000, ATL: 60,
	}
	r := e.Score(a, nil, cfg, nil)
	if r.Classification == models.ClassRuidoso {
		assert.Zero(t, r.PredictedChange)
	}
}

func TestScorePredictionMagnitudeBounds(t *testing.T) {
	cfg := normalConfig(t)
	e := NewEngine()

	r := e.Score(sampleAsset(), nil, cfg, nil)
	if r.Classification == models.ClassRuidoso {
		t.Skip("sample asset classified ruidoso under current defaults")
	}
	target := cfg.TargetFor(r.Classification)
	mag := math.Abs(r.PredictedChange)
	assert.GreaterOrEqual(t, mag, 0.5)
	assert.LessOrEqual(t, mag, target*2)
}

func TestScoreZeroWeightsNeutralGroups(t *testing.T) {
	cfg := normalConfig(t)
	cfg.PotentialWeights = models.PotentialWeights{}
	cfg.ResistanceWeights = models.ResistanceWeights{}
	e := NewEngine()

	r := e.Score(sampleAsset(), nil, cfg, nil)
	assert.Zero(t, r.Breakdown.Potential.Score)
	assert.Zero(t, r.Breakdown.Resistance.Score)
	// raw signal 0 shifted by the offset
	assert.InDelta(t, 0.4, r.BoostPower, 1e-9)
}

func TestClassifyOrderedRules(t *testing.T) {
	cfg := normalConfig(t)

	class, reason := Classify(0.90, 100_000_000, 0.9, cfg)
	assert.Equal(t, models.ClassInvertible, class)
	assert.NotEmpty(t, reason)

	// market cap above the ceiling downgrades despite a high boost
	class, reason = Classify(0.90, 20_000_000_000, 0.9, cfg)
	assert.Equal(t, models.ClassApalancado, class)
	assert.Contains(t, reason, "market cap")

	// ATL proximity below the floor downgrades too
	class, reason = Classify(0.90, 100_000_000, 0.2, cfg)
	assert.Equal(t, models.ClassApalancado, class)
	assert.Contains(t, reason, "ATL proximity")

	class, _ = Classify(0.50, 100_000_000, 0.9, cfg)
	assert.Equal(t, models.ClassApalancado, class)

	class, _ = Classify(0.20, 100_000_000, 0.9, cfg)
	assert.Equal(t, models.ClassRuidoso, class)
}

func TestClassifyZeroCapCeilingDisablesGate(t *testing.T) {
	cfg := normalConfig(t)
	cfg.Classification.InvertibleMaxMarketCap = 0

	class, _ := Classify(0.90, 900_000_000_000, 0.9, cfg)
	assert.Equal(t, models.ClassInvertible, class)
}

func TestScoreCalibrationAdjustsMagnitude(t *testing.T) {
	cfg := normalConfig(t)
	e := NewEngine()
	a := sampleAsset()

	base := e.Score(a, nil, cfg, nil)
	if base.Classification == models.ClassRuidoso {
		t.Skip("sample asset classified ruidoso under current defaults")
	}

	shrunk := e.Score(a, nil, cfg, &models.Calibration{
		BiasCorrection:  0,
		ScaleCorrection: 0.5,
		Confidence:      0.9,
	})
	assert.LessOrEqual(t, math.Abs(shrunk.PredictedChange), math.Abs(base.PredictedChange))

	// low confidence means the calibration is ignored
	ignored := e.Score(a, nil, cfg, &models.Calibration{
		BiasCorrection:  3,
		ScaleCorrection: 0.5,
		Confidence:      0.05,
	})
	assert.Equal(t, base.PredictedChange, ignored.PredictedChange)
}
