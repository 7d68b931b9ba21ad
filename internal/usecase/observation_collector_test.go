package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BoostPull/internal/domain/models"
	mid "BoostPull/internal/middleware"
	applogger "BoostPull/pkg/logger"
)

type fakeStream struct {
	mu         sync.Mutex
	reads      int
	reconnects int
	connected  bool
	obsChs     []chan models.PriceObservation
	errChs     []chan error
}

func (s *fakeStream) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *fakeStream) Subscribe(context.Context) error { return nil }

func (s *fakeStream) Read(context.Context) (<-chan models.PriceObservation, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obs := make(chan models.PriceObservation, 8)
	errs := make(chan error, 1)
	s.obsChs = append(s.obsChs, obs)
	s.errChs = append(s.errChs, errs)
	s.reads++
	return obs, errs
}

func (s *fakeStream) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	return nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *fakeStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *fakeStream) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *fakeStream) reconnectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnects
}

func (s *fakeStream) channels(i int) (chan models.PriceObservation, chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.obsChs[i], s.errChs[i]
}

type captureProc struct {
	mu   sync.Mutex
	seen []models.PriceObservation
}

func (p *captureProc) Process(_ context.Context, o models.PriceObservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, o)
	return nil
}

func (p *captureProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

type stubMetrics struct{}

func (stubMetrics) RecordCycleCreated(string)                            {}
func (stubMetrics) RecordCycleCompleted(string, float64)                 {}
func (stubMetrics) RecordScoreLatency(float64)                           {}
func (stubMetrics) RecordPredictionError(models.Classification, float64) {}
func (stubMetrics) RecordObservation(string)                             {}
func (stubMetrics) RecordError(string)                                   {}
func (stubMetrics) RecordLatency(string, float64)                        {}

func collectorLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func tick(asset string, price float64) models.PriceObservation {
	return models.PriceObservation{AssetID: asset, Price: price, Timestamp: time.Now()}
}

func TestCollectorResumesAfterStreamError(t *testing.T) {
	stream := &fakeStream{}
	proc := &captureProc{}
	pipe := mid.NewObservationPipeline(proc, stubMetrics{}, mid.WithMinInterval(time.Nanosecond))
	col := NewObservationCollector(stream, pipe, stubMetrics{}, collectorLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, col.Start(ctx))
	require.Equal(t, 1, stream.readCount())

	// the feed dies the way the real client does: one error frame, then
	// both channel ends close
	obsCh, errCh := stream.channels(0)
	errCh <- errors.New("connection reset")
	close(errCh)
	close(obsCh)

	require.Eventually(t, func() bool { return stream.readCount() == 2 },
		2*time.Second, 10*time.Millisecond, "a fresh read loop must be started")
	assert.Equal(t, 1, stream.reconnectCount())

	// ticks from the new connection flow through to the pipeline
	obsCh2, _ := stream.channels(1)
	obsCh2 <- tick("bitcoin", 50000)
	require.Eventually(t, func() bool { return proc.count() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestCollectorReopensWhenChannelsCloseSilently(t *testing.T) {
	stream := &fakeStream{}
	proc := &captureProc{}
	pipe := mid.NewObservationPipeline(proc, stubMetrics{}, mid.WithMinInterval(time.Nanosecond))
	col := NewObservationCollector(stream, pipe, stubMetrics{}, collectorLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, col.Start(ctx))

	// no error frame at all: both ends just close
	obsCh, errCh := stream.channels(0)
	close(errCh)
	close(obsCh)

	require.Eventually(t, func() bool { return stream.readCount() == 2 },
		2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, stream.reconnectCount())
}
