package models

import "time"

// CycleStatus is the lifecycle state of a cycle. A cycle is created active
// and mutated exactly once by the completion transition.
type CycleStatus string

const (
	CycleActive    CycleStatus = "active"
	CycleCompleted CycleStatus = "completed"
)

// MinCycleDuration is the shortest legal prediction window.
const MinCycleDuration = time.Minute

// SnapshotEntry captures one scored asset inside a cycle. Both the
// horizon-scaled prediction and the unscaled canonical 12-hour base
// prediction are stored so the scenario simulator can re-derive predictions
// at alternative horizons.
type SnapshotEntry struct {
	Asset          AssetMetrics     `json:"asset"`
	Signals        *ExternalSignals `json:"signals,omitempty"`
	Score          ScoreResult      `json:"score"`
	Prediction     float64          `json:"prediction"`     // scaled to the cycle horizon
	BasePrediction float64          `json:"basePrediction"` // unscaled 12h canonical value
}

// AssetResult is the realized outcome for one asset, populated at completion.
type AssetResult struct {
	AssetID        string         `json:"assetId"`
	Classification Classification `json:"classification"`
	Predicted      float64        `json:"predicted"`
	Actual         float64        `json:"actual"`
	StartPrice     float64        `json:"startPrice"`
	EndPrice       float64        `json:"endPrice"`
	Correct        bool           `json:"correct"`
	Method         string         `json:"method"`
	Reason         string         `json:"reason,omitempty"`
	AbsError       float64        `json:"absError"`
}

// ClassMetrics is the accuracy breakdown for one classification.
type ClassMetrics struct {
	Total       int     `json:"total"`
	Correct     int     `json:"correct"`
	SuccessRate float64 `json:"successRate"` // percent
}

// CycleMetrics aggregates validation accuracy across a completed cycle.
type CycleMetrics struct {
	Total       int                            `json:"total"`
	Correct     int                            `json:"correct"`
	SuccessRate float64                        `json:"successRate"` // percent
	ByClass     map[Classification]ClassMetrics `json:"byClass"`
	AvgError    float64                        `json:"avgError"`
	MaxError    float64                        `json:"maxError"`
}

// Cycle is the central persisted entity: a time-boxed prediction-and-
// validation unit. Append-only history; a cycle is never deleted, and the
// completed-id list retains only the 50 most recent.
type Cycle struct {
	ID              string           `json:"id"`
	Mode            string           `json:"mode"`
	StartTime       time.Time        `json:"startTime"`
	EndTime         time.Time        `json:"endTime"`
	DurationMs      int64            `json:"durationMs"`
	Status          CycleStatus      `json:"status"`
	Config          *AlgorithmConfig `json:"config"`
	Snapshot        []SnapshotEntry  `json:"snapshot"`
	Results         []AssetResult    `json:"results,omitempty"`
	Metrics         *CycleMetrics    `json:"metrics,omitempty"`
	ExcludedResults []string         `json:"excludedResults,omitempty"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
}

// Duration returns the cycle window as a time.Duration.
func (c *Cycle) Duration() time.Duration {
	return time.Duration(c.DurationMs) * time.Millisecond
}

// IsDue reports whether an active cycle has reached its end time.
func (c *Cycle) IsDue(now time.Time) bool {
	return c.Status == CycleActive && !now.Before(c.EndTime)
}

// IsExcluded reports whether an asset id was manually excluded from
// statistics.
func (c *Cycle) IsExcluded(assetID string) bool {
	for _, id := range c.ExcludedResults {
		if id == assetID {
			return true
		}
	}
	return false
}
