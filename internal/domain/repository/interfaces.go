package repository

import (
	"context"
	"time"

	"BoostPull/internal/domain/models"
)

// CycleStore is the read/write contract over the external key-value store
// holding cycle records and the active/completed id lists.
//
// The id-list updates are read-modify-write with no locking or optimistic
// concurrency control: two completions racing on the same list can lose an
// update. This matches the documented contract of the store and is accepted;
// fixing it would need CAS support the contract does not offer.
type CycleStore interface {
	SaveCycle(ctx context.Context, c *models.Cycle) error
	GetCycle(ctx context.Context, id string) (*models.Cycle, error) // nil, nil when absent
	// GetCycles batch-loads records by id; absent ids are omitted from the map.
	GetCycles(ctx context.Context, ids []string) (map[string]*models.Cycle, error)
	ActiveIDs(ctx context.Context) ([]string, error)
	CompletedIDs(ctx context.Context) ([]string, error)
	AddActive(ctx context.Context, id string) error
	// MarkCompleted moves id from the active list to the front of the
	// completed list, trimming the completed list to the retention cap.
	MarkCompleted(ctx context.Context, id string) error
}

// ObservationStore records and replays intra-cycle price observations.
type ObservationStore interface {
	Append(ctx context.Context, cycleID string, obs models.PriceObservation) error
	List(ctx context.Context, cycleID, assetID string) ([]models.PriceObservation, error)
}

// PriceLookup resolves current prices for a set of asset ids. Assets the
// provider cannot resolve are absent from the result, never an error.
type PriceLookup interface {
	CurrentPrices(ctx context.Context, ids []string) (map[string]float64, error)
}

// MarketData supplies asset metric snapshots for the scoring universe.
type MarketData interface {
	TopAssets(ctx context.Context, limit int) ([]models.AssetMetrics, error)
}

// SignalsProvider supplies optional external enrichment per asset. A nil
// result with nil error means "no signals available" and is valid.
type SignalsProvider interface {
	Signals(ctx context.Context, assetID string) (*models.ExternalSignals, error)
}

// ResultArchive sinks per-asset validation rows of completed cycles into the
// append-only analytics store.
type ResultArchive interface {
	ArchiveResults(ctx context.Context, c *models.Cycle) error
	Close() error
}

// CycleEvents publishes lifecycle events for downstream consumers.
type CycleEvents interface {
	PublishCompleted(ctx context.Context, c *models.Cycle) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordCycleCreated(mode string)
	RecordCycleCompleted(mode string, successRate float64)
	RecordScoreLatency(seconds float64)
	RecordPredictionError(class models.Classification, absError float64)
	RecordObservation(assetID string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

// Clock abstracts now() for deterministic tests.
type Clock func() time.Time
