package scoring

import (
	"BoostPull/internal/domain/models"
)

// Factor functions map raw metrics to a score in [0,1] via fixed, ordered
// bands rather than continuous curves so behavior stays auditable and
// reproducible. None of them ever fail: out-of-range or missing inputs map
// to documented neutral defaults.

// Factor names used in breakdowns.
const (
	FactorAtlProximity   = "atlProximity"
	FactorVolumeSurge    = "volumeSurge"
	FactorSocialMomentum = "socialMomentum"
	FactorNewsSentiment  = "newsSentiment"
	FactorReboundRecency = "reboundRecency"

	FactorLeverageRatio   = "leverageRatio"
	FactorMarketCapSize   = "marketCapSize"
	FactorVolatilityNoise = "volatilityNoise"
	FactorFearOverlap     = "fearOverlap"
)

const neutralFactorScore = 0.3

// CalcAtlProximity scores the position of the current price inside the
// all-time range. Closer to the all-time low scores higher. The degenerate
// range (high <= low or non-positive price) returns the neutral 0.3.
func CalcAtlProximity(price, atl, ath float64) float64 {
	if price <= 0 || ath <= atl {
		return neutralFactorScore
	}
	positionPct := (price - atl) / (ath - atl) * 100
	switch {
	case positionPct < 15:
		return 1.0
	case positionPct < 30:
		return 0.85
	case positionPct < 50:
		return 0.65
	case positionPct < 70:
		return 0.35
	default:
		return 0.15
	}
}

// CalcVolumeSurge scores the 24h volume relative to market cap.
func CalcVolumeSurge(volume24h, marketCap float64) float64 {
	if volume24h <= 0 || marketCap <= 0 {
		return 0.2
	}
	ratio := volume24h / marketCap
	switch {
	case ratio >= 0.20:
		return 1.0
	case ratio >= 0.10:
		return 0.8
	case ratio >= 0.05:
		return 0.6
	case ratio >= 0.02:
		return 0.4
	default:
		return 0.2
	}
}

// CalcSocialMomentum combines news volume, social chatter, and search-trend
// growth into one additive score, clamped to [0,1]. Missing signals leave
// the 0.3 base untouched.
func CalcSocialMomentum(sig *models.ExternalSignals, th models.FactorThresholds) float64 {
	score := neutralFactorScore
	if sig == nil {
		return score
	}

	if sig.NewsCount >= th.NewsStrongCount {
		score += 0.20
	} else if sig.NewsCount >= th.NewsSomeCount {
		score += 0.10
	}
	if sig.NewsCount > 0 {
		score += sig.NewsSentiment * 0.20
	}

	if sig.RedditPosts >= th.RedditStrongPost {
		score += 0.15
	} else if sig.RedditPosts >= th.RedditSomePost {
		score += 0.08
	}
	if sig.RedditPosts > 0 {
		score += sig.RedditSentiment * 0.10
	}

	if sig.TrendGrowthPct != nil {
		growth := *sig.TrendGrowthPct
		switch {
		case growth >= th.TrendStrongPct:
			score += 0.15
		case growth >= th.TrendSomePct:
			score += 0.08
		case growth < 0:
			score -= 0.05
		}
	}
	switch sig.TrendLabel {
	case "rising":
		score += 0.05
	case "falling":
		score -= 0.05
	}

	return clamp01(score)
}

// CalcNewsSentiment maps average news sentiment to a stepped score. With no
// news items the factor is the neutral 0.3.
func CalcNewsSentiment(sig *models.ExternalSignals) float64 {
	if sig == nil || sig.NewsCount == 0 {
		return neutralFactorScore
	}
	s := sig.NewsSentiment
	switch {
	case s >= 0.5:
		return 0.9
	case s >= 0.2:
		return 0.7
	case s >= 0:
		return 0.55
	case s >= -0.2:
		return 0.40
	case s >= -0.5:
		return 0.25
	default:
		return 0.10
	}
}

// CalcReboundRecency detects "dropped then bounced" patterns by comparing
// the 7-day and 24-hour changes. Four ordered rules, first match wins.
func CalcReboundRecency(change24h, change7d float64) float64 {
	switch {
	case change7d <= -15 && change24h >= 5:
		return 0.85
	case change7d <= -10 && change24h >= 2:
		return 0.70
	case change7d <= -5 && change24h > 0:
		return 0.55
	case change7d < 0 && change24h >= 0:
		return 0.40
	default:
		return neutralFactorScore
	}
}

// CalcLeverageRatio scores how far above its all-time low the price has
// already run. The further extended, the more resistance.
func CalcLeverageRatio(price, atl float64) float64 {
	if price <= 0 || atl <= 0 {
		return 0.5
	}
	ratio := price / atl
	switch {
	case ratio >= 10:
		return 0.9
	case ratio >= 5:
		return 0.7
	case ratio >= 3:
		return 0.5
	case ratio >= 1.5:
		return 0.3
	default:
		return 0.1
	}
}

// CalcMarketCapSize scores size resistance: larger caps are harder to move.
func CalcMarketCapSize(marketCap float64, th models.FactorThresholds) float64 {
	switch {
	case marketCap >= th.LargeCap:
		return 0.9
	case marketCap >= th.MidCap:
		return 0.7
	case marketCap >= th.SmallCap:
		return 0.5
	case marketCap >= th.MicroCap:
		return 0.3
	default:
		return 0.1
	}
}

// CalcVolatilityNoise scores recent chop from the absolute 24h change.
func CalcVolatilityNoise(change24h float64) float64 {
	abs := change24h
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 20:
		return 0.9
	case abs >= 10:
		return 0.7
	case abs >= 5:
		return 0.5
	case abs >= 2:
		return 0.3
	default:
		return 0.1
	}
}

// CalcFearOverlap scores market-wide fear. A missing Fear & Greed index maps
// to the neutral 0.3, never to an error.
func CalcFearOverlap(sig *models.ExternalSignals) float64 {
	if sig == nil || sig.FearGreed == nil {
		return neutralFactorScore
	}
	v := *sig.FearGreed
	switch {
	case v <= 20:
		return 0.9
	case v <= 35:
		return 0.6
	case v <= 55:
		return 0.3
	case v <= 75:
		return 0.2
	default:
		return 0.1
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
