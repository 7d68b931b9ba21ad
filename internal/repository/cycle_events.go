package repository

import (
	"context"
	"time"

	"BoostPull/internal/domain/models"
	"BoostPull/internal/domain/repository"
	pkgkafka "BoostPull/pkg/kafka"
)

// cycleCompletedEvent is the wire shape published on cycle completion. The
// full snapshot is deliberately omitted; consumers needing it fetch the
// record by id.
type cycleCompletedEvent struct {
	CycleID     string               `json:"cycleId"`
	Mode        string               `json:"mode"`
	StartTime   time.Time            `json:"startTime"`
	EndTime     time.Time            `json:"endTime"`
	DurationMs  int64                `json:"durationMs"`
	CompletedAt *time.Time           `json:"completedAt,omitempty"`
	Metrics     *models.CycleMetrics `json:"metrics,omitempty"`
	Assets      int                  `json:"assets"`
}

// KafkaCycleEvents publishes cycle lifecycle events to Kafka. It also
// satisfies logger.Publisher so the same producer can ship aggregated error
// logs.
type KafkaCycleEvents struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaCycleEvents creates a Kafka-backed event publisher.
func NewKafkaCycleEvents(producer *pkgkafka.Producer, topic string) *KafkaCycleEvents {
	return &KafkaCycleEvents{producer: producer, topic: topic}
}

func (p *KafkaCycleEvents) PublishCompleted(ctx context.Context, c *models.Cycle) error {
	evt := cycleCompletedEvent{
		CycleID:     c.ID,
		Mode:        c.Mode,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		DurationMs:  c.DurationMs,
		CompletedAt: c.CompletedAt,
		Metrics:     c.Metrics,
		Assets:      len(c.Snapshot),
	}
	return p.producer.Publish(ctx, p.topic, []byte(c.ID), evt)
}

// PublishMessage implements logger.Publisher.
func (p *KafkaCycleEvents) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func (p *KafkaCycleEvents) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopEvents discards events; used when Kafka is disabled.
type NoopEvents struct{}

func (NoopEvents) PublishCompleted(ctx context.Context, c *models.Cycle) error { return nil }
func (NoopEvents) Close() error                                                { return nil }

var (
	_ repository.CycleEvents = (*KafkaCycleEvents)(nil)
	_ repository.CycleEvents = NoopEvents{}
)
