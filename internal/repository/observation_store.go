package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BoostPull/internal/domain/models"
	"BoostPull/internal/domain/repository"
	"BoostPull/pkg/cache"
)

const (
	observationPrefix = "cycles:obs:"

	// maxObservationsPerAsset bounds the per-asset series so a long cycle
	// cannot grow a key without limit; oldest readings are dropped first.
	maxObservationsPerAsset = 500

	observationTTL = 7 * 24 * time.Hour
)

// CacheObservationStore keeps intra-cycle price observations in the key-value
// store, one series per (cycle, asset) pair.
type CacheObservationStore struct {
	cache cache.Service
}

// NewCacheObservationStore creates an observation store backed by the cache.
func NewCacheObservationStore(c cache.Service) repository.ObservationStore {
	return &CacheObservationStore{cache: c}
}

func (s *CacheObservationStore) Append(ctx context.Context, cycleID string, obs models.PriceObservation) error {
	if cycleID == "" || obs.AssetID == "" {
		return fmt.Errorf("cycle id and asset id are required")
	}
	key := observationKey(cycleID, obs.AssetID)

	var series []models.PriceObservation
	if err := s.cache.Get(ctx, key, &series); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return fmt.Errorf("read observations %s: %w", key, err)
	}

	series = append(series, obs)
	if len(series) > maxObservationsPerAsset {
		series = series[len(series)-maxObservationsPerAsset:]
	}
	return s.cache.Set(ctx, key, series, observationTTL)
}

func (s *CacheObservationStore) List(ctx context.Context, cycleID, assetID string) ([]models.PriceObservation, error) {
	var series []models.PriceObservation
	err := s.cache.Get(ctx, observationKey(cycleID, assetID), &series)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return series, nil
}

func observationKey(cycleID, assetID string) string {
	return observationPrefix + cycleID + ":" + assetID
}
