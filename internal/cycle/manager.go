// Package cycle implements the prediction cycle lifecycle: snapshot
// creation, due detection, and the single active -> completed transition.
package cycle

import (
	"context"
	"fmt"
	"time"

	"BoostPull/internal/domain/models"
	domrepo "BoostPull/internal/domain/repository"
	"BoostPull/internal/scoring"
	"BoostPull/internal/temporal"
	applogger "BoostPull/pkg/logger"

	"github.com/google/uuid"
)

// Manager orchestrates the cycle state machine over the external store.
// It holds no cycle state itself; every mutation is a new record produced
// from the old record plus inputs.
type Manager struct {
	store   domrepo.CycleStore
	log     *applogger.Logger
	metrics domrepo.Metrics
	now     domrepo.Clock
	newID   func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source, for tests.
func WithClock(clock domrepo.Clock) Option {
	return func(m *Manager) { m.now = clock }
}

// WithIDGenerator overrides cycle id generation, for tests.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// NewManager creates a cycle manager.
func NewManager(store domrepo.CycleStore, log *applogger.Logger, metrics domrepo.Metrics, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		log:     log,
		metrics: metrics,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create persists a new active cycle from a snapshot of scored assets.
// Every non-RUIDOSO prediction is scaled by the legacy linear pro-rata
// factor for the requested horizon; the unscaled base prediction is stored
// alongside it.
func (m *Manager) Create(ctx context.Context, snapshot []models.SnapshotEntry, cfg *models.AlgorithmConfig, duration time.Duration, mode string) (*models.Cycle, error) {
	if len(snapshot) == 0 {
		return nil, ErrEmptySnapshot
	}
	if duration < models.MinCycleDuration {
		return nil, ErrDurationTooShort
	}

	scale := temporal.LinearScale(duration)
	entries := make([]models.SnapshotEntry, len(snapshot))
	for i, e := range snapshot {
		e.BasePrediction = e.Score.PredictedChange
		if e.Score.Classification == models.ClassRuidoso {
			e.Prediction = 0
		} else {
			e.Prediction = e.BasePrediction * scale
		}
		entries[i] = e
	}

	start := m.now()
	c := &models.Cycle{
		ID:         m.newID(),
		Mode:       mode,
		StartTime:  start,
		EndTime:    start.Add(duration),
		DurationMs: duration.Milliseconds(),
		Status:     models.CycleActive,
		Config:     cfg,
		Snapshot:   entries,
	}

	if err := m.store.SaveCycle(ctx, c); err != nil {
		return nil, fmt.Errorf("save cycle: %w", err)
	}
	if err := m.store.AddActive(ctx, c.ID); err != nil {
		return nil, fmt.Errorf("register active cycle: %w", err)
	}

	if m.metrics != nil {
		m.metrics.RecordCycleCreated(mode)
	}
	m.log.Info("cycle created",
		applogger.String("cycle_id", c.ID),
		applogger.String("mode", mode),
		applogger.Int("assets", len(entries)),
		applogger.Int64("duration_ms", c.DurationMs))
	return c, nil
}

// Get loads a cycle by id.
func (m *Manager) Get(ctx context.Context, id string) (*models.Cycle, error) {
	c, err := m.store.GetCycle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load cycle %s: %w", id, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, nil
}

// PendingCompletion returns the active cycles whose end time has passed.
func (m *Manager) PendingCompletion(ctx context.Context) ([]*models.Cycle, error) {
	ids, err := m.store.ActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active ids: %w", err)
	}
	now := m.now()
	var due []*models.Cycle
	for _, id := range ids {
		c, err := m.store.GetCycle(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load cycle %s: %w", id, err)
		}
		if c != nil && c.IsDue(now) {
			due = append(due, c)
		}
	}
	return due, nil
}

// Complete runs the terminal transition: validate every snapshot asset that
// resolved a current price, aggregate metrics, and persist the completed
// record. Completing an already-completed cycle is an idempotent no-op that
// returns the existing record. Zero resolvable prices fails with
// ErrIncompleteData and leaves the cycle active.
func (m *Manager) Complete(ctx context.Context, id string, currentPrices map[string]float64, cfg *models.AlgorithmConfig) (*models.Cycle, error) {
	c, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == models.CycleCompleted {
		m.log.Debug("cycle already completed", applogger.String("cycle_id", id))
		return c, nil
	}

	tolerance := cfg.Prediction.MagnitudeTolerance
	results := make([]models.AssetResult, 0, len(c.Snapshot))
	for _, e := range c.Snapshot {
		current, ok := currentPrices[e.Asset.ID]
		if !ok || e.Asset.Price <= 0 {
			continue
		}
		actual := (current - e.Asset.Price) / e.Asset.Price * 100
		vr := scoring.Validate(e.Prediction, actual, e.Score.Classification, tolerance)
		absErr := e.Prediction - actual
		if absErr < 0 {
			absErr = -absErr
		}
		results = append(results, models.AssetResult{
			AssetID:        e.Asset.ID,
			Classification: e.Score.Classification,
			Predicted:      e.Prediction,
			Actual:         actual,
			StartPrice:     e.Asset.Price,
			EndPrice:       current,
			Correct:        vr.Correct,
			Method:         vr.Method,
			Reason:         vr.Reason,
			AbsError:       absErr,
		})
		if m.metrics != nil {
			m.metrics.RecordPredictionError(e.Score.Classification, absErr)
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("complete cycle %s: %w", id, ErrIncompleteData)
	}

	completedAt := m.now()
	c.Status = models.CycleCompleted
	c.Results = results
	c.Metrics = AggregateMetrics(results, c.ExcludedResults)
	c.CompletedAt = &completedAt

	if err := m.store.SaveCycle(ctx, c); err != nil {
		return nil, fmt.Errorf("save completed cycle: %w", err)
	}
	if err := m.store.MarkCompleted(ctx, c.ID); err != nil {
		return nil, fmt.Errorf("move cycle to completed list: %w", err)
	}

	if m.metrics != nil {
		m.metrics.RecordCycleCompleted(c.Mode, c.Metrics.SuccessRate)
	}
	m.log.Info("cycle completed",
		applogger.String("cycle_id", c.ID),
		applogger.Int("results", len(results)),
		applogger.Any("success_rate", c.Metrics.SuccessRate))
	return c, nil
}

// ListActive returns all active cycles.
func (m *Manager) ListActive(ctx context.Context) ([]*models.Cycle, error) {
	ids, err := m.store.ActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active ids: %w", err)
	}
	return m.loadAll(ctx, ids, 0)
}

// ListCompleted returns up to limit completed cycles, most recent first.
// limit <= 0 returns everything retained.
func (m *Manager) ListCompleted(ctx context.Context, limit int) ([]*models.Cycle, error) {
	ids, err := m.store.CompletedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list completed ids: %w", err)
	}
	return m.loadAll(ctx, ids, limit)
}

func (m *Manager) loadAll(ctx context.Context, ids []string, limit int) ([]*models.Cycle, error) {
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	records, err := m.store.GetCycles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cycles: %w", err)
	}
	out := make([]*models.Cycle, 0, len(ids))
	for _, id := range ids {
		if c := records[id]; c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}
