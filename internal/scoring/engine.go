package scoring

import (
	"fmt"
	"math"

	"BoostPull/internal/domain/models"
)

// The net raw signal potential*metaPot - resistance*metaRes is known to live
// in roughly [-0.4, 0.6]; BoostPower shifts and clamps it into [0,1].
const rawSignalOffset = 0.4

// Engine is the factor scoring model: a stateless transformation from asset
// metrics plus external signals into a ScoreResult. It holds no mutable
// state; all inputs arrive explicitly.
type Engine struct{}

// NewEngine creates the scoring engine.
func NewEngine() *Engine { return &Engine{} }

// Score runs the full model: per-factor scores, group aggregation,
// classification, and prediction construction. It never fails for any input
// within the documented types; cal may be nil.
func (e *Engine) Score(asset models.AssetMetrics, sig *models.ExternalSignals, cfg *models.AlgorithmConfig, cal *models.Calibration) models.ScoreResult {
	pot := map[string]models.FactorContribution{
		FactorAtlProximity:   contribution(CalcAtlProximity(asset.Price, asset.ATL, asset.ATH), cfg.PotentialWeights.AtlProximity),
		FactorVolumeSurge:    contribution(CalcVolumeSurge(asset.Volume24h, asset.MarketCap), cfg.PotentialWeights.VolumeSurge),
		FactorSocialMomentum: contribution(CalcSocialMomentum(sig, cfg.Thresholds), cfg.PotentialWeights.SocialMomentum),
		FactorNewsSentiment:  contribution(CalcNewsSentiment(sig), cfg.PotentialWeights.NewsSentiment),
		FactorReboundRecency: contribution(CalcReboundRecency(asset.Change24h, asset.Change7d), cfg.PotentialWeights.ReboundRecency),
	}
	res := map[string]models.FactorContribution{
		FactorLeverageRatio:   contribution(CalcLeverageRatio(asset.Price, asset.ATL), cfg.ResistanceWeights.LeverageRatio),
		FactorMarketCapSize:   contribution(CalcMarketCapSize(asset.MarketCap, cfg.Thresholds), cfg.ResistanceWeights.MarketCapSize),
		FactorVolatilityNoise: contribution(CalcVolatilityNoise(asset.Change24h), cfg.ResistanceWeights.VolatilityNoise),
		FactorFearOverlap:     contribution(CalcFearOverlap(sig), cfg.ResistanceWeights.FearOverlap),
	}

	potScore := aggregateGroup(pot)
	resScore := aggregateGroup(res)

	raw := potScore*cfg.MetaWeights.Potential - resScore*cfg.MetaWeights.Resistance
	boost := clamp01((raw + rawSignalOffset) / 1.0)

	atlProx := pot[FactorAtlProximity].Raw
	class, reason := Classify(boost, asset.MarketCap, atlProx, cfg)

	predicted := e.predict(asset, class, boost, pot, res, cfg, cal)

	return models.ScoreResult{
		BoostPower:      boost,
		Classification:  class,
		Reason:          reason,
		Confidence:      confidenceTier(boost),
		PredictedChange: predicted,
		Breakdown: models.ScoreBreakdown{
			Potential:  models.GroupBreakdown{Factors: pot, Score: potScore},
			Resistance: models.GroupBreakdown{Factors: res, Score: resScore},
			RawSignal:  raw,
		},
	}
}

func contribution(raw, weight float64) models.FactorContribution {
	return models.FactorContribution{Raw: raw, Weight: weight, Weighted: raw * weight}
}

// aggregateGroup computes sum(score*weight)/sum(weight) over the factors
// actually present (weight > 0). A total weight of zero yields 0: a
// deliberate neutral fallback for degenerate weight configs, not an error.
func aggregateGroup(factors map[string]models.FactorContribution) float64 {
	var weighted, total float64
	for _, f := range factors {
		if f.Weight <= 0 {
			continue
		}
		weighted += f.Weighted
		total += f.Weight
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// Classify applies the ordered classification rules; first match wins.
func Classify(boost, marketCap, atlProximity float64, cfg *models.AlgorithmConfig) (models.Classification, string) {
	rules := cfg.Classification

	if boost >= rules.InvertibleMinBoost {
		capOK := rules.InvertibleMaxMarketCap == 0 || marketCap <= rules.InvertibleMaxMarketCap
		proxOK := atlProximity >= rules.InvertibleMinAtlProx
		switch {
		case capOK && proxOK:
			return models.ClassInvertible, fmt.Sprintf("boost %.2f clears invertible threshold with structural gates intact", boost)
		case !capOK:
			return models.ClassApalancado, fmt.Sprintf("boost %.2f clears invertible threshold but market cap %.0f exceeds the %.0f ceiling", boost, marketCap, rules.InvertibleMaxMarketCap)
		default:
			return models.ClassApalancado, fmt.Sprintf("boost %.2f clears invertible threshold but ATL proximity %.2f is below the %.2f floor", boost, atlProximity, rules.InvertibleMinAtlProx)
		}
	}

	if boost >= rules.ApalancadoMinBoost {
		if atlProximity <= 0.35 {
			return models.ClassApalancado, fmt.Sprintf("boost %.2f shows moderate signal near all-time-high territory", boost)
		}
		return models.ClassApalancado, fmt.Sprintf("boost %.2f shows moderate signal", boost)
	}

	return models.ClassRuidoso, fmt.Sprintf("boost %.2f below actionable thresholds", boost)
}

// predict builds the multi-signal magnitude/direction prediction. RUIDOSO
// always predicts exactly 0; every other classification lands in
// [0.5, 2*classTarget] by magnitude.
func (e *Engine) predict(asset models.AssetMetrics, class models.Classification, boost float64,
	pot, res map[string]models.FactorContribution, cfg *models.AlgorithmConfig, cal *models.Calibration) float64 {

	if class == models.ClassRuidoso {
		return 0
	}

	target := cfg.TargetFor(class)
	targetCap := target * 2

	// Volatility band: blend of the daily move and the weekly move spread
	// over its days, with a fallback when price-change data is absent.
	dailyVolProxy := math.Abs(asset.Change24h)*0.70 + math.Abs(asset.Change7d)/7*0.30
	if asset.Change24h == 0 && asset.Change7d == 0 {
		dailyVolProxy = target / 2
	}
	volatilityBand := clamp(dailyVolProxy*0.60, 1.0, targetCap)

	atlProx := pot[FactorAtlProximity].Raw
	social := pot[FactorSocialMomentum].Raw
	news := pot[FactorNewsSentiment].Raw
	rebound := pot[FactorReboundRecency].Raw
	volumeSurge := pot[FactorVolumeSurge].Raw
	volNoise := res[FactorVolatilityNoise].Raw
	fear := res[FactorFearOverlap].Raw

	directional := math.Tanh(asset.Change24h/12)*0.40 +
		(atlProx-0.5)*0.25 +
		(social-0.3)*0.20 +
		(news-0.3)*0.10 +
		(rebound-0.3)*0.05

	magnitudeMult := 0.3 + math.Max(0, directional)*1.2
	volumeMult := 0.5 + volumeSurge
	noisePenalty := 1 - (volNoise*0.20 + fear*0.10)

	classBpMin := 0.40
	if class == models.ClassInvertible {
		classBpMin = 0.65
	}
	confidenceMult := 0.6 + normalize(boost, classBpMin, 1.0)*0.8

	magnitude := volatilityBand * magnitudeMult * volumeMult * noisePenalty * confidenceMult
	if magnitude < 0.5 {
		magnitude = 0.5
	}

	if cal != nil && cal.Confidence > 0.1 {
		magnitude -= cal.BiasCorrection
		if cal.ScaleCorrection > 0 && cal.ScaleCorrection < 5 {
			magnitude *= cal.ScaleCorrection
		}
	}

	magnitude = clamp(magnitude, 0.5, targetCap)

	if directional < 0 {
		return -magnitude
	}
	return magnitude
}

// normalize maps v from [lo,hi] to [0,1], clamped.
func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return clamp01((v - lo) / (hi - lo))
}

func confidenceTier(boost float64) string {
	switch {
	case boost >= 0.80:
		return "high"
	case boost >= 0.55:
		return "medium"
	default:
		return "low"
	}
}
