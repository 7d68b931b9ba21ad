package usecase

import (
	"context"
	"sync"
	"time"

	"BoostPull/internal/domain/models"
	drepo "BoostPull/internal/domain/repository"
	mid "BoostPull/internal/middleware"
	"BoostPull/pkg/logger"
)

// PriceStream is the live tick source the collector consumes.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.PriceObservation, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// ObservationRecorder fans one observation out to every active cycle whose
// snapshot tracks the asset. It implements middleware.Proc.
type ObservationRecorder struct {
	manager activeLister
	store   drepo.ObservationStore

	mu        sync.Mutex
	active    []*models.Cycle
	refreshed time.Time
	refresh   time.Duration
}

type activeLister interface {
	ListActive(ctx context.Context) ([]*models.Cycle, error)
}

// NewObservationRecorder creates a recorder. refresh bounds how often the
// active-cycle set is reloaded from the store.
func NewObservationRecorder(manager activeLister, store drepo.ObservationStore, refresh time.Duration) *ObservationRecorder {
	if refresh <= 0 {
		refresh = time.Minute
	}
	return &ObservationRecorder{manager: manager, store: store, refresh: refresh}
}

// Process implements middleware.Proc.
func (r *ObservationRecorder) Process(ctx context.Context, obs models.PriceObservation) error {
	cycles, err := r.activeCycles(ctx)
	if err != nil {
		return err
	}
	for _, c := range cycles {
		if !tracksAsset(c, obs.AssetID) {
			continue
		}
		if err := r.store.Append(ctx, c.ID, obs); err != nil {
			return err
		}
	}
	return nil
}

func (r *ObservationRecorder) activeCycles(ctx context.Context) ([]*models.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.refreshed) < r.refresh && r.active != nil {
		return r.active, nil
	}
	cycles, err := r.manager.ListActive(ctx)
	if err != nil {
		if r.active != nil {
			return r.active, nil // stale set beats no set
		}
		return nil, err
	}
	r.active = cycles
	r.refreshed = time.Now()
	return cycles, nil
}

func tracksAsset(c *models.Cycle, assetID string) bool {
	for _, e := range c.Snapshot {
		if e.Asset.ID == assetID {
			return true
		}
	}
	return false
}

// ObservationCollector wires the price stream through the pipeline into the
// observation store.
type ObservationCollector struct {
	stream  PriceStream
	pipe    *mid.ObservationPipeline
	metrics drepo.Metrics
	log     *logger.Logger
}

// NewObservationCollector creates a collector.
func NewObservationCollector(stream PriceStream, pipe *mid.ObservationPipeline, metrics drepo.Metrics, log *logger.Logger) *ObservationCollector {
	return &ObservationCollector{stream: stream, pipe: pipe, metrics: metrics, log: log}
}

// IsConnected reports stream status.
func (c *ObservationCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes, and begins consuming in the background.
func (c *ObservationCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	c.pipe.Start(ctx)
	obsCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, obsCh, errCh)
	return nil
}

// streamRetryWait spaces reconnect attempts when re-dialing keeps failing.
const streamRetryWait = 5 * time.Second

// consume drains the stream channels. The feed closes both ends when its read
// loop dies, so a closed channel is treated as loop exit, and after any loss
// of the stream a fresh Read is wired in so ticks keep flowing.
func (c *ObservationCollector) consume(ctx context.Context, obsCh <-chan models.PriceObservation, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				break
			}
			if err == nil {
				break
			}
			c.metrics.RecordError("stream")
			c.log.Warn("price stream error, reconnecting", logger.Error(err))
			if obsCh, errCh = c.reopen(ctx); errCh == nil {
				return
			}
		case o, ok := <-obsCh:
			if !ok {
				obsCh = nil
				break
			}
			if o.AssetID == "" {
				break
			}
			_ = c.pipe.Process(ctx, o)
		}

		// both ends closed without a preceding error frame
		if obsCh == nil && errCh == nil {
			if obsCh, errCh = c.reopen(ctx); errCh == nil {
				return
			}
		}
	}
}

// reopen re-dials, resubscribes, and starts a fresh Read, retrying until it
// succeeds or ctx is canceled. Nil channels mean the context ended.
func (c *ObservationCollector) reopen(ctx context.Context) (<-chan models.PriceObservation, <-chan error) {
	for {
		if err := c.stream.Reconnect(ctx); err != nil {
			c.log.Error("reconnect failed", logger.Error(err))
			select {
			case <-ctx.Done():
				return nil, nil
			case <-time.After(streamRetryWait):
			}
			continue
		}
		return c.stream.Read(ctx)
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *ObservationCollector) Shutdown(ctx context.Context) error {
	c.pipe.Stop()
	return c.stream.Close()
}
