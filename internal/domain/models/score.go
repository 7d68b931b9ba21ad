package models

import "strings"

// Classification is the categorical outcome of scoring one asset.
type Classification string

const (
	ClassInvertible Classification = "INVERTIBLE" // strong, structurally-gated buy signal
	ClassApalancado Classification = "APALANCADO" // moderate / leveraged-risk signal
	ClassRuidoso    Classification = "RUIDOSO"    // no actionable signal
)

// NormalizeClassification maps a loosely-typed label arriving at a system
// boundary into the tagged enum. Unknown or empty input degrades to RUIDOSO.
func NormalizeClassification(raw string) Classification {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(ClassInvertible):
		return ClassInvertible
	case string(ClassApalancado):
		return ClassApalancado
	default:
		return ClassRuidoso
	}
}

// FactorContribution records one factor's raw score, its configured weight
// and the weighted product, retained for audit and reporting.
type FactorContribution struct {
	Raw      float64 `json:"raw"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// GroupBreakdown is the aggregation detail for one factor group.
type GroupBreakdown struct {
	Factors map[string]FactorContribution `json:"factors"`
	Score   float64                       `json:"score"`
}

// ScoreBreakdown is the full audit trail behind one ScoreResult.
type ScoreBreakdown struct {
	Potential  GroupBreakdown `json:"potential"`
	Resistance GroupBreakdown `json:"resistance"`
	RawSignal  float64        `json:"rawSignal"`
}

// ScoreResult is the derived output of the factor scoring model. It is never
// persisted on its own, only embedded into a cycle snapshot.
type ScoreResult struct {
	BoostPower      float64        `json:"boostPower"` // [0,1]
	Classification  Classification `json:"classification"`
	Reason          string         `json:"reason"`
	Confidence      string         `json:"confidence"`      // "high" | "medium" | "low"
	PredictedChange float64        `json:"predictedChange"` // signed percent, magnitude-capped
	Breakdown       ScoreBreakdown `json:"breakdown"`
}

// Calibration is an optional online correction applied to a fresh prediction.
type Calibration struct {
	BiasCorrection  float64 `json:"biasCorrection"`
	ScaleCorrection float64 `json:"scaleCorrection"`
	Confidence      float64 `json:"confidence"`
}

// ValidationResult is the outcome of checking a prediction against the
// realized price change.
type ValidationResult struct {
	Correct bool   `json:"correct"`
	Method  string `json:"method"` // "noise" | "direction" | "direction_magnitude"
	Reason  string `json:"reason"`
}
