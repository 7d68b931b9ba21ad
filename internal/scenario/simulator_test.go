package scenario

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BoostPull/internal/domain/models"
	"BoostPull/internal/temporal"
	applogger "BoostPull/pkg/logger"
)

var cycleStart = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Output: "stderr"})
	require.NoError(t, err)
	return log
}

// completedCycle builds a 12h completed cycle with one asset per (id,
// startPrice, endPrice) triple, all classified INVERTIBLE with a +10 base
// prediction unless overridden.
func completedCycle(assets ...[3]interface{}) *models.Cycle {
	c := &models.Cycle{
		ID:         "sim-1",
		Mode:       models.ModeNormal,
		Status:     models.CycleCompleted,
		StartTime:  cycleStart,
		EndTime:    cycleStart.Add(12 * time.Hour),
		DurationMs: (12 * time.Hour).Milliseconds(),
	}
	for _, a := range assets {
		id := a[0].(string)
		startPrice := a[1].(float64)
		endPrice := a[2].(float64)
		c.Snapshot = append(c.Snapshot, models.SnapshotEntry{
			Asset: models.AssetMetrics{ID: id, Price: startPrice},
			Score: models.ScoreResult{
				Classification:  models.ClassInvertible,
				PredictedChange: 10,
			},
			Prediction:     10,
			BasePrediction: 10,
		})
		c.Results = append(c.Results, models.AssetResult{
			AssetID:        id,
			Classification: models.ClassInvertible,
			Predicted:      10,
			Actual:         (endPrice - startPrice) / startPrice * 100,
			StartPrice:     startPrice,
			EndPrice:       endPrice,
		})
	}
	return c
}

func TestPricePathInterpolation(t *testing.T) {
	obs := []models.PriceObservation{
		{AssetID: "bitcoin", Price: 105, Timestamp: cycleStart.Add(6 * time.Hour)},
	}
	path := BuildPath(100, cycleStart, obs, 110, cycleStart.Add(12*time.Hour))
	require.Equal(t, 3, path.Points())

	assert.InDelta(t, 100.0, path.PriceAt(cycleStart), 1e-9)
	assert.InDelta(t, 102.5, path.PriceAt(cycleStart.Add(3*time.Hour)), 1e-9)
	assert.InDelta(t, 105.0, path.PriceAt(cycleStart.Add(6*time.Hour)), 1e-9)
	assert.InDelta(t, 107.5, path.PriceAt(cycleStart.Add(9*time.Hour)), 1e-9)

	// clamped outside the recorded range
	assert.InDelta(t, 100.0, path.PriceAt(cycleStart.Add(-time.Hour)), 1e-9)
	assert.InDelta(t, 110.0, path.PriceAt(cycleStart.Add(20*time.Hour)), 1e-9)
}

func TestPricePathDropsOutOfWindowObservations(t *testing.T) {
	obs := []models.PriceObservation{
		{AssetID: "bitcoin", Price: 90, Timestamp: cycleStart.Add(-time.Hour)},
		{AssetID: "bitcoin", Price: 105, Timestamp: cycleStart.Add(6 * time.Hour)},
		{AssetID: "bitcoin", Price: 200, Timestamp: cycleStart.Add(13 * time.Hour)},
		{AssetID: "bitcoin", Price: 0, Timestamp: cycleStart.Add(7 * time.Hour)},
	}
	path := BuildPath(100, cycleStart, obs, 110, cycleStart.Add(12*time.Hour))
	assert.Equal(t, 3, path.Points()) // start, the 6h reading, end
}

func TestPricePathSkipsRedundantEndPrice(t *testing.T) {
	end := cycleStart.Add(12 * time.Hour)

	// a reading in the window tail that matches the resolved end price makes
	// the appended end point redundant
	obs := []models.PriceObservation{
		{AssetID: "bitcoin", Price: 110.05, Timestamp: cycleStart.Add(11*time.Hour + 30*time.Minute)},
	}
	path := BuildPath(100, cycleStart, obs, 110, end)
	assert.Equal(t, 2, path.Points())

	// same tail reading but a materially different end price is kept
	obs[0].Price = 100
	path = BuildPath(100, cycleStart, obs, 110, end)
	assert.Equal(t, 3, path.Points())
}

func TestSimulateDurationBeyondActual(t *testing.T) {
	c := completedCycle([3]interface{}{"bitcoin", 100.0, 110.0})
	paths := NewSimulator(testLogger(t)).buildPaths(c, nil)

	out := simulateDuration(c, paths, 24*time.Hour)
	assert.Equal(t, models.DurationScenarioBeyondActual, out.Status)
	assert.Empty(t, out.Results)
}

func TestSimulateDurationRederivesPrediction(t *testing.T) {
	c := completedCycle([3]interface{}{"bitcoin", 100.0, 110.0})
	paths := NewSimulator(testLogger(t)).buildPaths(c, nil)

	out := simulateDuration(c, paths, 6*time.Hour)
	require.Equal(t, models.DurationScenarioOK, out.Status)
	require.Len(t, out.Results, 1)

	r := out.Results[0]
	// linear path: +5% by the 6h mark
	assert.InDelta(t, 5.0, r.Actual, 1e-9)
	assert.InDelta(t, 10*temporal.Scale(6, models.ClassInvertible, models.ModeNormal), r.Predicted, 1e-9)
	assert.True(t, r.Correct)
	assert.Equal(t, "direction_magnitude", r.Method)
}

func TestJudgeScenarioRules(t *testing.T) {
	cases := []struct {
		name      string
		class     models.Classification
		predicted float64
		actual    float64
		correct   bool
		method    string
	}{
		{"noise within tolerance", models.ClassRuidoso, 0, 4, true, "noise"},
		{"noise breached", models.ClassRuidoso, 0, 6, false, "noise"},
		{"zero prediction is noise", models.ClassInvertible, 0, -3, true, "noise"},
		{"direction mismatch", models.ClassInvertible, 10, -2, false, "direction"},
		{"magnitude within", models.ClassInvertible, 10, 24, true, "direction_magnitude"},
		{"magnitude breached", models.ClassInvertible, 10, 26, false, "direction_magnitude"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := judge("x", tc.class, tc.predicted, tc.actual, 100, 100)
			assert.Equal(t, tc.correct, r.Correct)
			assert.Equal(t, tc.method, r.Method)
		})
	}
}

func TestSimulateTradingExits(t *testing.T) {
	// riser climbs linearly to +10%, faller sinks to -10%
	c := completedCycle(
		[3]interface{}{"riser", 100.0, 110.0},
		[3]interface{}{"faller", 100.0, 90.0},
	)
	paths := NewSimulator(testLogger(t)).buildPaths(c, nil)

	cfg := models.TradingConfig{Name: "moderate", TakeProfitPct: 10, StopLossPct: 5, MaxHoldCycles: 8}
	sc := simulateTrading(c, paths, cfg)

	require.Equal(t, 2, sc.Opened)
	assert.Equal(t, 1, sc.ExitCounts[models.ExitTakeProfit])
	assert.Equal(t, 1, sc.ExitCounts[models.ExitStopLoss])

	byAsset := map[string]models.Position{}
	for _, p := range sc.Positions {
		byAsset[p.AssetID] = p
	}
	// take-profit fires at the last checkpoint when +10% is finally reached
	assert.Equal(t, models.ExitTakeProfit, byAsset["riser"].ExitReason)
	assert.InDelta(t, 10.0, byAsset["riser"].PnLPct, 1e-9)
	// stop-loss fires at the fourth checkpoint, -1.25% per step
	assert.Equal(t, models.ExitStopLoss, byAsset["faller"].ExitReason)
	assert.Equal(t, 4, byAsset["faller"].ExitCheckpoint)
	assert.InDelta(t, -5.0, byAsset["faller"].PnLPct, 1e-9)

	assert.InDelta(t, 50.0, sc.WinRate, 1e-9)
	assert.InDelta(t, 2.5, sc.AvgPnL, 1e-9)
}

func TestSimulateTradingMaxHoldAndNoiseSkip(t *testing.T) {
	c := completedCycle([3]interface{}{"riser", 100.0, 110.0})
	c.Snapshot = append(c.Snapshot, models.SnapshotEntry{
		Asset: models.AssetMetrics{ID: "noisecoin", Price: 1},
		Score: models.ScoreResult{Classification: models.ClassRuidoso},
	})
	paths := NewSimulator(testLogger(t)).buildPaths(c, nil)

	cfg := models.TradingConfig{Name: "aggressive", TakeProfitPct: 20, StopLossPct: 8, MaxHoldCycles: 12}
	sc := simulateTrading(c, paths, cfg)

	// noise-class assets never open positions
	require.Equal(t, 1, sc.Opened)
	assert.Equal(t, models.ExitMaxHold, sc.Positions[0].ExitReason)
	assert.InDelta(t, 10.0, sc.Positions[0].PnLPct, 1e-9)

	// 100% wins, +10 avg PnL, no stop-loss: 0.4 + 0.1 + 0.2 + 0.2
	assert.InDelta(t, 0.9, sc.Score, 1e-9)
}

func TestSimulateRejectsActiveCycle(t *testing.T) {
	c := completedCycle([3]interface{}{"bitcoin", 100.0, 110.0})
	c.Status = models.CycleActive
	_, err := NewSimulator(testLogger(t)).Simulate(c, nil, models.TradingConfig{}, nil)
	assert.ErrorIs(t, err, ErrCycleNotCompleted)
}

func TestSimulateRanksAndRecommends(t *testing.T) {
	c := completedCycle([3]interface{}{"riser", 100.0, 110.0})
	sim := NewSimulator(testLogger(t))

	report, err := sim.Simulate(c, nil, models.TradingConfig{}, nil)
	require.NoError(t, err)

	assert.Equal(t, c.ID, report.CycleID)
	assert.Len(t, report.Durations, len(DefaultDurationGrid))
	require.Len(t, report.Trading, len(tradingProfiles)+1)

	// sorted by composite score, best first and recommended
	for i := 1; i < len(report.Trading); i++ {
		assert.GreaterOrEqual(t, report.Trading[i-1].Score, report.Trading[i].Score)
	}
	assert.True(t, report.Trading[0].Recommended)
	require.NotNil(t, report.Recommended)
	assert.Equal(t, report.Trading[0].Config, *report.Recommended)

	// an unnamed active config gets the fallback name
	found := false
	for _, tr := range report.Trading {
		if tr.Config.Name == "active" {
			found = true
		}
	}
	assert.True(t, found)
}
