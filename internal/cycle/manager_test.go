package cycle_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BoostPull/internal/cycle"
	"BoostPull/internal/domain/models"
	"BoostPull/internal/repository"
	"BoostPull/internal/scoring"
	pkgcache "BoostPull/pkg/cache"
	applogger "BoostPull/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func testManager(t *testing.T, now time.Time) *cycle.Manager {
	t.Helper()
	store := repository.NewCacheCycleStore(pkgcache.NewMemoryCache())
	seq := 0
	return cycle.NewManager(store, testLogger(t), nil,
		cycle.WithClock(func() time.Time { return now }),
		cycle.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("cycle-%d", seq)
		}))
}

func snapshotEntry(id string, price, predicted float64, class models.Classification) models.SnapshotEntry {
	return models.SnapshotEntry{
		Asset: models.AssetMetrics{ID: id, Price: price},
		Score: models.ScoreResult{
			Classification:  class,
			PredictedChange: predicted,
		},
	}
}

func TestCreateScalesPredictionsToHorizon(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	m := testManager(t, now)

	cfg, err := scoring.NewAlgorithmConfig(models.ModeNormal)
	require.NoError(t, err)

	snap := []models.SnapshotEntry{
		snapshotEntry("bitcoin", 100, 10, models.ClassInvertible),
		snapshotEntry("noisecoin", 1, 10, models.ClassRuidoso),
	}

	c, err := m.Create(ctx, snap, cfg, 6*time.Hour, models.ModeNormal)
	require.NoError(t, err)

	assert.Equal(t, "cycle-1", c.ID)
	assert.Equal(t, models.CycleActive, c.Status)
	assert.Equal(t, now, c.StartTime)
	assert.Equal(t, now.Add(6*time.Hour), c.EndTime)

	// 6h is half the canonical 12h window: pro-rata factor 0.5
	assert.InDelta(t, 5.0, c.Snapshot[0].Prediction, 1e-9)
	assert.InDelta(t, 10.0, c.Snapshot[0].BasePrediction, 1e-9)

	// noise-class assets are never given a directional prediction
	assert.Zero(t, c.Snapshot[1].Prediction)
	assert.InDelta(t, 10.0, c.Snapshot[1].BasePrediction, 1e-9)

	// the created cycle is registered active and readable back
	active, err := m.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, c.ID, active[0].ID)
}

func TestCreateRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	m := testManager(t, time.Now())
	cfg, err := scoring.NewAlgorithmConfig(models.ModeNormal)
	require.NoError(t, err)

	_, err = m.Create(ctx, nil, cfg, time.Hour, models.ModeNormal)
	assert.ErrorIs(t, err, cycle.ErrEmptySnapshot)

	snap := []models.SnapshotEntry{snapshotEntry("bitcoin", 100, 10, models.ClassInvertible)}
	_, err = m.Create(ctx, snap, cfg, 30*time.Second, models.ModeNormal)
	assert.ErrorIs(t, err, cycle.ErrDurationTooShort)
}

func TestPendingCompletionUsesEndTime(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	store := repository.NewCacheCycleStore(pkgcache.NewMemoryCache())
	now := start
	m := cycle.NewManager(store, testLogger(t), nil,
		cycle.WithClock(func() time.Time { return now }))

	cfg, err := scoring.NewAlgorithmConfig(models.ModeNormal)
	require.NoError(t, err)
	snap := []models.SnapshotEntry{snapshotEntry("bitcoin", 100, 10, models.ClassInvertible)}

	c, err := m.Create(ctx, snap, cfg, time.Hour, models.ModeNormal)
	require.NoError(t, err)

	due, err := m.PendingCompletion(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)

	now = start.Add(time.Hour)
	due, err = m.PendingCompletion(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, c.ID, due[0].ID)
}

func TestCompleteValidatesAndMovesCycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	m := testManager(t, now)

	cfg, err := scoring.NewAlgorithmConfig(models.ModeNormal)
	require.NoError(t, err)

	snap := []models.SnapshotEntry{
		snapshotEntry("bitcoin", 100, 10, models.ClassInvertible),
		snapshotEntry("solana", 50, 10, models.ClassApalancado),
		snapshotEntry("ghostcoin", 2, 10, models.ClassInvertible), // no price at completion
	}
	c, err := m.Create(ctx, snap, cfg, 12*time.Hour, models.ModeNormal)
	require.NoError(t, err)

	prices := map[string]float64{
		"bitcoin": 111, // +11%, within 2x tolerance of the +10 prediction
		"solana":  45,  // -10%, wrong direction
	}
	done, err := m.Complete(ctx, c.ID, prices, cfg)
	require.NoError(t, err)

	assert.Equal(t, models.CycleCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	require.Len(t, done.Results, 2)

	btc := done.Results[0]
	assert.Equal(t, "bitcoin", btc.AssetID)
	assert.InDelta(t, 11.0, btc.Actual, 1e-9)
	assert.True(t, btc.Correct)
	assert.Equal(t, "direction_magnitude", btc.Method)

	sol := done.Results[1]
	assert.Equal(t, "solana", sol.AssetID)
	assert.False(t, sol.Correct)

	require.NotNil(t, done.Metrics)
	assert.Equal(t, 2, done.Metrics.Total)
	assert.Equal(t, 1, done.Metrics.Correct)
	assert.InDelta(t, 50.0, done.Metrics.SuccessRate, 1e-9)

	// the cycle moved from the active list to the completed list
	active, err := m.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	completed, err := m.ListCompleted(ctx, 0)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, c.ID, completed[0].ID)
}

func TestCompleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := testManager(t, time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))

	cfg, err := scoring.NewAlgorithmConfig(models.ModeNormal)
	require.NoError(t, err)
	snap := []models.SnapshotEntry{snapshotEntry("bitcoin", 100, 10, models.ClassInvertible)}
	c, err := m.Create(ctx, snap, cfg, 12*time.Hour, models.ModeNormal)
	require.NoError(t, err)

	first, err := m.Complete(ctx, c.ID, map[string]float64{"bitcoin": 108}, cfg)
	require.NoError(t, err)

	// a second completion returns the persisted record untouched, even with
	// different prices
	second, err := m.Complete(ctx, c.ID, map[string]float64{"bitcoin": 200}, cfg)
	require.NoError(t, err)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.CompletedAt.Unix(), second.CompletedAt.Unix())
}

func TestCompleteWithNoPricesLeavesCycleActive(t *testing.T) {
	ctx := context.Background()
	m := testManager(t, time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))

	cfg, err := scoring.NewAlgorithmConfig(models.ModeNormal)
	require.NoError(t, err)
	snap := []models.SnapshotEntry{snapshotEntry("bitcoin", 100, 10, models.ClassInvertible)}
	c, err := m.Create(ctx, snap, cfg, 12*time.Hour, models.ModeNormal)
	require.NoError(t, err)

	_, err = m.Complete(ctx, c.ID, map[string]float64{}, cfg)
	assert.ErrorIs(t, err, cycle.ErrIncompleteData)

	got, err := m.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CycleActive, got.Status)
}

func TestGetUnknownCycle(t *testing.T) {
	m := testManager(t, time.Now())
	_, err := m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, cycle.ErrNotFound)
}

func TestAggregateMetricsExcludesAssets(t *testing.T) {
	results := []models.AssetResult{
		{AssetID: "a", Classification: models.ClassInvertible, Correct: true, AbsError: 2},
		{AssetID: "b", Classification: models.ClassInvertible, Correct: false, AbsError: 6},
		{AssetID: "c", Classification: models.ClassApalancado, Correct: true, AbsError: 100},
	}
	m := cycle.AggregateMetrics(results, []string{"c"})

	assert.Equal(t, 2, m.Total)
	assert.Equal(t, 1, m.Correct)
	assert.InDelta(t, 50.0, m.SuccessRate, 1e-9)
	assert.InDelta(t, 4.0, m.AvgError, 1e-9)
	assert.InDelta(t, 6.0, m.MaxError, 1e-9)

	inv := m.ByClass[models.ClassInvertible]
	assert.Equal(t, 2, inv.Total)
	assert.InDelta(t, 50.0, inv.SuccessRate, 1e-9)
	_, hasExcluded := m.ByClass[models.ClassApalancado]
	assert.False(t, hasExcluded)
}
