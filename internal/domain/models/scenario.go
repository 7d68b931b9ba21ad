package models

// TradingConfig is one take-profit / stop-loss / max-hold tuple evaluated by
// the scenario simulator. Percentages are positive magnitudes.
type TradingConfig struct {
	Name          string  `json:"name" yaml:"name"`
	TakeProfitPct float64 `json:"takeProfitPct" yaml:"take_profit_pct" default:"10" validate:"gt=0"`
	StopLossPct   float64 `json:"stopLossPct" yaml:"stop_loss_pct" default:"5" validate:"gt=0"`
	MaxHoldCycles int     `json:"maxHoldCycles" yaml:"max_hold_cycles" default:"8" validate:"gte=1"`
}

// Position exit reasons.
const (
	ExitTakeProfit = "take_profit"
	ExitStopLoss   = "stop_loss"
	ExitMaxHold    = "max_hold"
)

// Position is one simulated trade inside a trading-config scenario.
type Position struct {
	AssetID        string         `json:"assetId"`
	Classification Classification `json:"classification"`
	EntryPrice     float64        `json:"entryPrice"`
	ExitPrice      float64        `json:"exitPrice"`
	PnLPct         float64        `json:"pnlPct"`
	ExitReason     string         `json:"exitReason"`
	ExitCheckpoint int            `json:"exitCheckpoint"` // 1-based checkpoint index
}

// TradingScenario aggregates the simulated positions for one TradingConfig.
type TradingScenario struct {
	Config      TradingConfig  `json:"config"`
	Positions   []Position     `json:"positions"`
	Opened      int            `json:"opened"`
	WinRate     float64        `json:"winRate"` // percent
	AvgPnL      float64        `json:"avgPnl"`
	AvgWin      float64        `json:"avgWin"`
	AvgLoss     float64        `json:"avgLoss"`
	ExitCounts  map[string]int `json:"exitCounts"`
	Score       float64        `json:"score"`
	Recommended bool           `json:"recommended"`
}

// Duration scenario statuses.
const (
	DurationScenarioOK           = "ok"
	DurationScenarioBeyondActual = "beyond_actual"
)

// DurationScenario is the counterfactual re-validation of a completed cycle
// at an alternative horizon. Metrics is nil when Status is "beyond_actual".
type DurationScenario struct {
	DurationMs int64         `json:"durationMs"`
	Status     string        `json:"status"`
	Results    []AssetResult `json:"results,omitempty"`
	Metrics    *CycleMetrics `json:"metrics,omitempty"`
}

// ScenarioReport is the full counterfactual replay of one completed cycle.
// Ephemeral: computed on demand, never persisted.
type ScenarioReport struct {
	CycleID     string             `json:"cycleId"`
	Mode        string             `json:"mode"`
	Durations   []DurationScenario `json:"durations"`
	Trading     []TradingScenario  `json:"trading"`
	Recommended *TradingConfig     `json:"recommended,omitempty"`
}
