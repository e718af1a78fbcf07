// Package events publishes report lifecycle events for downstream consumers
// (notification delivery, dashboards). Publishing is best-effort: a failed
// publish never fails the operation that produced it.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/crimenet/report-service/internal/model"
)

// Type identifies a lifecycle event.
type Type string

const (
	TypeReportCreated  Type = "report.created"
	TypeReportAssigned Type = "report.assigned"
	TypeStatusChanged  Type = "report.status_changed"
)

// Event is the wire payload published per accepted lifecycle operation.
type Event struct {
	Type       Type               `json:"type"`
	ReportID   string             `json:"reportId"`
	CaseNumber string             `json:"caseNumber"`
	Status     model.ReportStatus `json:"status"`
	ActorID    string             `json:"actorId"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// Publisher emits lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Kafka publishes events to a Kafka topic via franz-go. Failures are
// returned, not logged; reporting belongs to the caller.
type Kafka struct {
	client *kgo.Client
	topic  string
}

// KafkaConfig holds Kafka publisher configuration.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// NewKafka creates a Kafka-backed publisher.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerLinger(100*time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, err
	}
	return &Kafka{client: client, topic: cfg.Topic}, nil
}

// Publish produces the event synchronously.
func (k *Kafka) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Key:   []byte(event.ReportID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	return k.client.ProduceSync(ctx, record).FirstErr()
}

// Close flushes and shuts down the producer.
func (k *Kafka) Close() {
	k.client.Close()
}

// Nop is a publisher that discards events. Used when Kafka is not
// configured and in tests.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(ctx context.Context, event Event) error { return nil }

// Close is a no-op.
func (Nop) Close() {}
