package usecase

import (
	"context"
	"errors"
	"time"

	"BoostPull/internal/cycle"
	"BoostPull/internal/domain/models"
	drepo "BoostPull/internal/domain/repository"
	"BoostPull/pkg/logger"
)

// CompletionRunner drives the terminal transition of due cycles: resolve
// current prices, validate predictions, then archive and publish the
// completed record.
type CompletionRunner struct {
	manager *cycle.Manager
	prices  drepo.PriceLookup
	archive drepo.ResultArchive
	events  drepo.CycleEvents
	metrics drepo.Metrics
	log     *logger.Logger
}

// NewCompletionRunner creates a completion runner.
func NewCompletionRunner(
	manager *cycle.Manager,
	prices drepo.PriceLookup,
	archive drepo.ResultArchive,
	events drepo.CycleEvents,
	metrics drepo.Metrics,
	log *logger.Logger,
) *CompletionRunner {
	return &CompletionRunner{
		manager: manager,
		prices:  prices,
		archive: archive,
		events:  events,
		metrics: metrics,
		log:     log,
	}
}

// Run completes every due cycle. A cycle whose prices cannot be resolved yet
// stays active and is retried on the next poll; one failing cycle does not
// block the rest.
func (r *CompletionRunner) Run(ctx context.Context) (completed []*models.Cycle, err error) {
	due, err := r.manager.PendingCompletion(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range due {
		done, cerr := r.completeOne(ctx, c)
		if cerr != nil {
			r.log.Error("cycle completion failed",
				logger.String("cycle", c.ID),
				logger.Error(cerr))
			continue
		}
		completed = append(completed, done)
	}
	return completed, nil
}

func (r *CompletionRunner) completeOne(ctx context.Context, c *models.Cycle) (*models.Cycle, error) {
	start := time.Now()

	prices, err := r.prices.CurrentPrices(ctx, AssetIDs(c))
	if err != nil {
		r.metrics.RecordError("price_fetch")
		return nil, err
	}

	done, err := r.manager.Complete(ctx, c.ID, prices, c.Config)
	if err != nil {
		if errors.Is(err, cycle.ErrIncompleteData) {
			// no price resolved for any snapshot asset; retry next poll
			r.log.Warn("completion deferred, no resolvable prices",
				logger.String("cycle", c.ID))
		}
		return nil, err
	}

	if r.archive != nil {
		if err := r.archive.ArchiveResults(ctx, done); err != nil {
			r.metrics.RecordError("archive")
			r.log.Error("archive failed", logger.String("cycle", done.ID), logger.Error(err))
		}
	}
	if r.events != nil {
		if err := r.events.PublishCompleted(ctx, done); err != nil {
			r.metrics.RecordError("publish")
			r.log.Error("publish failed", logger.String("cycle", done.ID), logger.Error(err))
		}
	}

	r.metrics.RecordLatency("cycle_complete", time.Since(start).Seconds())
	return done, nil
}
