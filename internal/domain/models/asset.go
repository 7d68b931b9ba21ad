package models

import "time"

// AssetMetrics is the market snapshot for one asset at one instant.
// Immutable once captured.
type AssetMetrics struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Name       string     `json:"name,omitempty"`
	Price      float64    `json:"price"`
	MarketCap  float64    `json:"marketCap"`
	Volume24h  float64    `json:"volume24h"`
	Change24h  float64    `json:"change24h"` // percent
	Change7d   float64    `json:"change7d"`  // percent
	ATH        float64    `json:"ath"`
	ATL        float64    `json:"atl"`
	ATHDate    *time.Time `json:"athDate,omitempty"`
	ATLDate    *time.Time `json:"atlDate,omitempty"`
	CapturedAt time.Time  `json:"capturedAt"`
}

// ExternalSignals is optional enrichment for one asset. Any field may be
// absent; absent numeric fields use nil pointers so zero stays meaningful.
// A nil *ExternalSignals is valid everywhere and maps to neutral defaults.
type ExternalSignals struct {
	NewsCount       int      `json:"newsCount"`
	NewsSentiment   float64  `json:"newsSentiment"` // -1..1, only meaningful when NewsCount > 0
	RedditPosts     int      `json:"redditPosts"`
	RedditSentiment float64  `json:"redditSentiment"` // -1..1
	TrendGrowthPct  *float64 `json:"trendGrowthPct,omitempty"`
	TrendLabel      string   `json:"trendLabel,omitempty"` // "rising" | "falling" | "flat"
	FearGreed       *float64 `json:"fearGreed,omitempty"`  // market-wide, 0-100
}

// PriceObservation is one intra-cycle price reading for an asset. The
// scenario simulator interpolates between observations when replaying a
// completed cycle.
type PriceObservation struct {
	AssetID   string    `json:"assetId"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// AssetPrice is the shape returned by the price-lookup collaborator.
type AssetPrice struct {
	ID           string  `json:"id"`
	CurrentPrice float64 `json:"current_price"`
}
