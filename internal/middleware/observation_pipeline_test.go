package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BoostPull/internal/domain/models"
)

type recordingProc struct {
	mu   sync.Mutex
	seen []models.PriceObservation
	err  error
}

func (p *recordingProc) Process(_ context.Context, o models.PriceObservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.seen = append(p.seen, o)
	return nil
}

func (p *recordingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

type nopMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newNopMetrics() *nopMetrics { return &nopMetrics{errors: map[string]int{}} }

func (m *nopMetrics) RecordCycleCreated(string)                            {}
func (m *nopMetrics) RecordCycleCompleted(string, float64)                 {}
func (m *nopMetrics) RecordScoreLatency(float64)                           {}
func (m *nopMetrics) RecordPredictionError(models.Classification, float64) {}
func (m *nopMetrics) RecordObservation(string)                             {}
func (m *nopMetrics) RecordLatency(string, float64)                        {}
func (m *nopMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *nopMetrics) errorCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func obsAt(asset string, price float64) models.PriceObservation {
	return models.PriceObservation{AssetID: asset, Price: price, Timestamp: time.Now()}
}

func TestPipelineRejectsInvalidObservations(t *testing.T) {
	proc := &recordingProc{}
	p := NewObservationPipeline(proc, newNopMetrics())

	ctx := context.Background()
	assert.Error(t, p.Process(ctx, models.PriceObservation{Price: 1, Timestamp: time.Now()}))
	assert.Error(t, p.Process(ctx, models.PriceObservation{AssetID: "x", Price: 1}))
	assert.Error(t, p.Process(ctx, obsAt("x", 0)))
	assert.Equal(t, 0, proc.count())
}

func TestPipelineThrottlesPerAsset(t *testing.T) {
	proc := &recordingProc{}
	p := NewObservationPipeline(proc, newNopMetrics(), WithMinInterval(time.Hour))

	ctx := context.Background()
	require.NoError(t, p.Process(ctx, obsAt("bitcoin", 100)))
	// second tick inside the gap is dropped without error
	require.NoError(t, p.Process(ctx, obsAt("bitcoin", 101)))
	// a different asset has its own window
	require.NoError(t, p.Process(ctx, obsAt("solana", 50)))

	assert.Equal(t, 2, proc.count())
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &recordingProc{err: errors.New("store down")}
	metrics := newNopMetrics()
	p := NewObservationPipeline(proc, metrics, WithMinInterval(time.Nanosecond), WithBufferSize(4))

	ctx := context.Background()
	assert.Error(t, p.Process(ctx, obsAt("bitcoin", 100)))
	assert.Equal(t, 1, metrics.errorCount("pipeline_process"))

	// store recovers; the background flusher drains the buffer
	proc.mu.Lock()
	proc.err = nil
	proc.mu.Unlock()

	p.Start(ctx)
	defer p.Stop()

	require.Eventually(t, func() bool { return proc.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}
