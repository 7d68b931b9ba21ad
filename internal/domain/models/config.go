package models

// Algorithm modes. Two independently tunable configs exist, one per mode;
// they are never merged.
const (
	ModeNormal      = "normal"
	ModeSpeculative = "speculative"
)

// MetaWeights balances the two opposing factor groups. The pair must sum to
// 1.0 within ±0.01.
type MetaWeights struct {
	Potential  float64 `json:"potential" yaml:"potential" default:"0.6" validate:"gte=0,lte=1"`
	Resistance float64 `json:"resistance" yaml:"resistance" default:"0.4" validate:"gte=0,lte=1"`
}

// PotentialWeights weights the upside factors. Must sum to 1.0 within ±0.05.
type PotentialWeights struct {
	AtlProximity   float64 `json:"atlProximity" yaml:"atl_proximity" default:"0.30" validate:"gte=0,lte=1"`
	VolumeSurge    float64 `json:"volumeSurge" yaml:"volume_surge" default:"0.20" validate:"gte=0,lte=1"`
	SocialMomentum float64 `json:"socialMomentum" yaml:"social_momentum" default:"0.20" validate:"gte=0,lte=1"`
	NewsSentiment  float64 `json:"newsSentiment" yaml:"news_sentiment" default:"0.15" validate:"gte=0,lte=1"`
	ReboundRecency float64 `json:"reboundRecency" yaml:"rebound_recency" default:"0.15" validate:"gte=0,lte=1"`
}

// ResistanceWeights weights the downside factors. Must sum to 1.0 within ±0.05.
type ResistanceWeights struct {
	LeverageRatio   float64 `json:"leverageRatio" yaml:"leverage_ratio" default:"0.30" validate:"gte=0,lte=1"`
	MarketCapSize   float64 `json:"marketCapSize" yaml:"market_cap_size" default:"0.30" validate:"gte=0,lte=1"`
	VolatilityNoise float64 `json:"volatilityNoise" yaml:"volatility_noise" default:"0.25" validate:"gte=0,lte=1"`
	FearOverlap     float64 `json:"fearOverlap" yaml:"fear_overlap" default:"0.15" validate:"gte=0,lte=1"`
}

// ClassificationRules gates the categorical outcome. InvertibleMinBoost must
// stay strictly above ApalancadoMinBoost.
type ClassificationRules struct {
	InvertibleMinBoost     float64 `json:"invertibleMinBoost" yaml:"invertible_min_boost" default:"0.65" validate:"gte=0,lte=1"`
	ApalancadoMinBoost     float64 `json:"apalancadoMinBoost" yaml:"apalancado_min_boost" default:"0.40" validate:"gte=0,lte=1"`
	InvertibleMaxMarketCap float64 `json:"invertibleMaxMarketCap" yaml:"invertible_max_market_cap" default:"5000000000" validate:"gte=0"` // 0 = no ceiling
	InvertibleMinAtlProx   float64 `json:"invertibleMinAtlProx" yaml:"invertible_min_atl_prox" default:"0.5" validate:"gte=0,lte=1"`
}

// PredictionRules bounds prediction magnitudes per classification.
type PredictionRules struct {
	InvertibleTarget   float64 `json:"invertibleTarget" yaml:"invertible_target" default:"12" validate:"gt=0"`
	ApalancadoTarget   float64 `json:"apalancadoTarget" yaml:"apalancado_target" default:"6" validate:"gt=0"`
	MagnitudeTolerance float64 `json:"magnitudeTolerance" yaml:"magnitude_tolerance" default:"5" validate:"gte=1,lte=50"`
}

// FactorThresholds holds the tunable cut points read by individual factor
// functions. Band positions that are structural (ATL range bands, volume
// ratio bands) are fixed in code; only the levels with a per-deployment
// meaning live here.
type FactorThresholds struct {
	NewsStrongCount  int     `json:"newsStrongCount" yaml:"news_strong_count" default:"5" validate:"gte=0"`
	NewsSomeCount    int     `json:"newsSomeCount" yaml:"news_some_count" default:"2" validate:"gte=0"`
	RedditStrongPost int     `json:"redditStrongPost" yaml:"reddit_strong_post" default:"10" validate:"gte=0"`
	RedditSomePost   int     `json:"redditSomePost" yaml:"reddit_some_post" default:"3" validate:"gte=0"`
	TrendStrongPct   float64 `json:"trendStrongPct" yaml:"trend_strong_pct" default:"50"`
	TrendSomePct     float64 `json:"trendSomePct" yaml:"trend_some_pct" default:"20"`
	LargeCap         float64 `json:"largeCap" yaml:"large_cap" default:"10000000000" validate:"gt=0"`
	MidCap           float64 `json:"midCap" yaml:"mid_cap" default:"1000000000" validate:"gt=0"`
	SmallCap         float64 `json:"smallCap" yaml:"small_cap" default:"100000000" validate:"gt=0"`
	MicroCap         float64 `json:"microCap" yaml:"micro_cap" default:"10000000" validate:"gt=0"`
}

// AlgorithmConfig is the versioned, mode-scoped configuration for the factor
// scoring model. It is constructed once with documented defaults and
// validated as a whole; factor functions read required fields directly with
// no ad hoc fallbacks.
type AlgorithmConfig struct {
	ModelType         string              `json:"modelType" yaml:"model_type" default:"boost-v2"`
	Mode              string              `json:"mode" yaml:"mode" default:"normal" validate:"oneof=normal speculative"`
	MetaWeights       MetaWeights         `json:"metaWeights" yaml:"meta_weights"`
	PotentialWeights  PotentialWeights    `json:"potentialWeights" yaml:"potential_weights"`
	ResistanceWeights ResistanceWeights   `json:"resistanceWeights" yaml:"resistance_weights"`
	Classification    ClassificationRules `json:"classification" yaml:"classification"`
	Prediction        PredictionRules     `json:"prediction" yaml:"prediction"`
	Thresholds        FactorThresholds    `json:"thresholds" yaml:"thresholds"`
}

// TargetFor returns the canonical 12-hour magnitude target for a
// classification. RUIDOSO has no target and returns 0.
func (c *AlgorithmConfig) TargetFor(class Classification) float64 {
	switch class {
	case ClassInvertible:
		return c.Prediction.InvertibleTarget
	case ClassApalancado:
		return c.Prediction.ApalancadoTarget
	default:
		return 0
	}
}
