package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"BoostPull/internal/domain/models"
	domrepo "BoostPull/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, obs models.PriceObservation) error
}

// ObservationPipeline sits between the price feed and the observation store.
// It validates, throttles per asset, and buffers when the store is
// unavailable so a transient outage does not lose the whole series.
type ObservationPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	minGap   time.Duration
	bufSize  int
	bufCh    chan models.PriceObservation
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-asset last accepted time
}

type PipelineOption func(*ObservationPipeline)

// WithMinInterval sets the minimum gap between accepted observations per
// asset. Ticks arriving faster are dropped.
func WithMinInterval(d time.Duration) PipelineOption {
	return func(p *ObservationPipeline) {
		if d > 0 {
			p.minGap = d
		}
	}
}

// WithBufferSize sets the temporary buffer size when the store is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *ObservationPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewObservationPipeline creates a new pipeline.
func NewObservationPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *ObservationPipeline {
	p := &ObservationPipeline{
		proc:     proc,
		metrics:  metrics,
		minGap:   30 * time.Second, // default per-asset throttle
		bufSize:  1000,
		bufCh:    make(chan models.PriceObservation, 1000),
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan models.PriceObservation, p.bufSize)
	}
	return p
}

// Start launches background flushing of buffered observations.
func (p *ObservationPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case o := <-p.bufCh:
				if err := p.proc.Process(ctx, o); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- o:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *ObservationPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards an observation, buffering on
// store errors.
func (p *ObservationPipeline) Process(ctx context.Context, o models.PriceObservation) error {
	start := time.Now()
	if err := validateObservation(o); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(o.AssetID, start) {
		// throttled; drop silently
		return nil
	}

	if err := p.proc.Process(ctx, o); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- o:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordObservation(o.AssetID)
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateObservation(o models.PriceObservation) error {
	if o.AssetID == "" {
		return fmt.Errorf("asset id empty")
	}
	if o.Timestamp.IsZero() {
		return fmt.Errorf("timestamp invalid")
	}
	if o.Price <= 0 {
		return fmt.Errorf("non-positive price")
	}
	return nil
}

func (p *ObservationPipeline) allow(assetID string, now time.Time) bool {
	if p.minGap <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[assetID]
	if !last.IsZero() && now.Sub(last) < p.minGap {
		return false
	}
	p.lastSeen[assetID] = now
	return true
}
