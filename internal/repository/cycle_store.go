package repository

import (
	"context"
	"errors"
	"fmt"

	"BoostPull/internal/domain/models"
	"BoostPull/internal/domain/repository"
	"BoostPull/pkg/cache"
)

const (
	cycleRecordPrefix = "cycles:record:"
	activeListKey     = "cycles:active"
	completedListKey  = "cycles:completed"

	// completedRetention caps the completed-id list. Records themselves are
	// never deleted; only the index is trimmed.
	completedRetention = 50
)

// CacheCycleStore persists cycles and the active/completed id lists in the
// key-value store.
type CacheCycleStore struct {
	cache cache.Service
}

// NewCacheCycleStore creates a cycle store backed by the given cache service.
func NewCacheCycleStore(c cache.Service) repository.CycleStore {
	return &CacheCycleStore{cache: c}
}

func (s *CacheCycleStore) SaveCycle(ctx context.Context, c *models.Cycle) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("cycle id is required")
	}
	return s.cache.Set(ctx, cycleRecordPrefix+c.ID, c, 0)
}

func (s *CacheCycleStore) GetCycle(ctx context.Context, id string) (*models.Cycle, error) {
	var c models.Cycle
	if err := s.cache.Get(ctx, cycleRecordPrefix+id, &c); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cycle %s: %w", id, err)
	}
	return &c, nil
}

// GetCycles loads a batch of records in one multi-get round trip. Absent or
// undecodable records are omitted rather than failing the batch.
func (s *CacheCycleStore) GetCycles(ctx context.Context, ids []string) (map[string]*models.Cycle, error) {
	if len(ids) == 0 {
		return map[string]*models.Cycle{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cycleRecordPrefix + id
	}
	typed, err := cache.MGetTyped[models.Cycle](ctx, s.cache, keys...)
	if err != nil {
		return nil, fmt.Errorf("mget cycles: %w", err)
	}
	out := make(map[string]*models.Cycle, len(typed))
	for _, id := range ids {
		if c, ok := typed[cycleRecordPrefix+id]; ok {
			c := c
			out[id] = &c
		}
	}
	return out, nil
}

func (s *CacheCycleStore) ActiveIDs(ctx context.Context) ([]string, error) {
	return s.idList(ctx, activeListKey)
}

func (s *CacheCycleStore) CompletedIDs(ctx context.Context) ([]string, error) {
	return s.idList(ctx, completedListKey)
}

func (s *CacheCycleStore) AddActive(ctx context.Context, id string) error {
	ids, err := s.idList(ctx, activeListKey)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return s.cache.Set(ctx, activeListKey, append(ids, id), 0)
}

// MarkCompleted moves id from the active list to the front of the completed
// list and trims the completed list to the retention cap. The two list writes
// are not atomic; see the CycleStore contract.
func (s *CacheCycleStore) MarkCompleted(ctx context.Context, id string) error {
	active, err := s.idList(ctx, activeListKey)
	if err != nil {
		return err
	}
	remaining := make([]string, 0, len(active))
	for _, existing := range active {
		if existing != id {
			remaining = append(remaining, existing)
		}
	}
	if err := s.cache.Set(ctx, activeListKey, remaining, 0); err != nil {
		return fmt.Errorf("update active list: %w", err)
	}

	completed, err := s.idList(ctx, completedListKey)
	if err != nil {
		return err
	}
	updated := make([]string, 0, len(completed)+1)
	updated = append(updated, id)
	for _, existing := range completed {
		if existing != id {
			updated = append(updated, existing)
		}
	}
	if len(updated) > completedRetention {
		updated = updated[:completedRetention]
	}
	return s.cache.Set(ctx, completedListKey, updated, 0)
}

// idList reads an id list leniently: a missing key or a legacy string
// encoding yields an empty list, not an error.
func (s *CacheCycleStore) idList(ctx context.Context, key string) ([]string, error) {
	var ids []string
	found, err := cache.GetLenient(ctx, s.cache, key, &ids)
	if err != nil {
		return nil, fmt.Errorf("read id list %s: %w", key, err)
	}
	if !found {
		return []string{}, nil
	}
	return ids, nil
}
