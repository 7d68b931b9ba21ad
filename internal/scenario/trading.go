package scenario

import (
	"time"

	"BoostPull/internal/domain/models"
)

// Fixed trading profiles evaluated against every completed cycle, alongside
// the currently active configuration.
var tradingProfiles = []models.TradingConfig{
	{Name: "conservative", TakeProfitPct: 5, StopLossPct: 3, MaxHoldCycles: 6},
	{Name: "moderate", TakeProfitPct: 10, StopLossPct: 5, MaxHoldCycles: 8},
	{Name: "aggressive", TakeProfitPct: 20, StopLossPct: 8, MaxHoldCycles: 12},
}

// DefaultTradingConfig is the active configuration used until a
// recommendation replaces it.
func DefaultTradingConfig() models.TradingConfig {
	return tradingProfiles[1]
}

// simulateTrading replays a trade-management configuration against the
// reconstructed price paths. Only INVERTIBLE and APALANCADO assets open
// positions. The cycle window is discretized into MaxHoldCycles equal
// checkpoints; the position exits at the first take-profit or stop-loss
// breach, else at the final checkpoint.
func simulateTrading(c *models.Cycle, paths map[string]*PricePath, cfg models.TradingConfig) models.TradingScenario {
	sc := models.TradingScenario{
		Config:     cfg,
		ExitCounts: map[string]int{},
	}
	if cfg.MaxHoldCycles < 1 {
		cfg.MaxHoldCycles = 1
	}
	step := c.Duration() / time.Duration(cfg.MaxHoldCycles)

	var winSum, lossSum, pnlSum float64
	var wins, losses int

	for _, e := range c.Snapshot {
		class := e.Score.Classification
		if class != models.ClassInvertible && class != models.ClassApalancado {
			continue
		}
		if c.IsExcluded(e.Asset.ID) {
			continue
		}
		path := paths[e.Asset.ID]
		if path == nil || e.Asset.Price <= 0 {
			continue
		}

		pos := models.Position{
			AssetID:        e.Asset.ID,
			Classification: class,
			EntryPrice:     e.Asset.Price,
		}
		for i := 1; i <= cfg.MaxHoldCycles; i++ {
			t := c.StartTime.Add(time.Duration(i) * step)
			price := path.PriceAt(t)
			pnl := (price - pos.EntryPrice) / pos.EntryPrice * 100

			pos.ExitPrice = price
			pos.PnLPct = pnl
			pos.ExitCheckpoint = i

			if pnl >= cfg.TakeProfitPct {
				pos.ExitReason = models.ExitTakeProfit
				break
			}
			if pnl <= -cfg.StopLossPct {
				pos.ExitReason = models.ExitStopLoss
				break
			}
			if i == cfg.MaxHoldCycles {
				pos.ExitReason = models.ExitMaxHold
			}
		}

		sc.Positions = append(sc.Positions, pos)
		sc.ExitCounts[pos.ExitReason]++
		pnlSum += pos.PnLPct
		if pos.PnLPct > 0 {
			wins++
			winSum += pos.PnLPct
		} else {
			losses++
			lossSum += pos.PnLPct
		}
	}

	sc.Opened = len(sc.Positions)
	if sc.Opened > 0 {
		sc.WinRate = float64(wins) / float64(sc.Opened) * 100
		sc.AvgPnL = pnlSum / float64(sc.Opened)
	}
	if wins > 0 {
		sc.AvgWin = winSum / float64(wins)
	}
	if losses > 0 {
		sc.AvgLoss = lossSum / float64(losses)
	}
	sc.Score = compositeScore(sc)
	return sc
}

// compositeScore ranks a trading scenario: win rate and PnL dominate, with a
// consistency bonus for configurations that never hit a stop-loss.
func compositeScore(sc models.TradingScenario) float64 {
	consistency := 0.0
	if sc.Opened > 0 && sc.ExitCounts[models.ExitStopLoss] == 0 {
		consistency = 1.0
	}
	pnlTerm := sc.AvgPnL / 20
	if pnlTerm > 1 {
		pnlTerm = 1
	}
	if pnlTerm < -1 {
		pnlTerm = -1
	}
	return 0.4*sc.WinRate/100 + 0.4*pnlTerm*0.5 + 0.2 + 0.2*consistency
}
