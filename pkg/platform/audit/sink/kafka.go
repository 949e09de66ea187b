// Package sink provides the Kafka-backed audit sink. Events are produced to a
// single topic keyed by attendee ID so per-attendee ordering is preserved
// within a partition. The sink is write-only; reads happen in downstream
// consumers, not in this service.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/sentinel"
)

// KafkaStore implements audit.Store over a franz-go producer.
type KafkaStore struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka connects a producer to the given brokers.
func NewKafka(brokers []string, topic string, logger *slog.Logger) (*KafkaStore, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}

	return &KafkaStore{client: client, topic: topic, logger: logger}, nil
}

// recordPayload is the JSON structure produced to Kafka. Field names match
// audit.Event for deserialization by downstream consumers.
type recordPayload struct {
	Category          string `json:"category"`
	Timestamp         string `json:"timestamp"`
	AttendeeID        string `json:"attendee_id,omitempty"`
	EventID           string `json:"event_id,omitempty"`
	Action            string `json:"action"`
	Zone              string `json:"zone,omitempty"`
	Mode              string `json:"mode,omitempty"`
	Reason            string `json:"reason,omitempty"`
	RecognizedMinutes int    `json:"recognized_minutes,omitempty"`
	CodeHash          string `json:"code_hash,omitempty"`
	ActorID           string `json:"actor_id,omitempty"`
	RequestID         string `json:"request_id,omitempty"`
}

// Append produces the event asynchronously. Broker lag must never block a
// kiosk scan, so produce failures surface in logs only.
func (s *KafkaStore) Append(ctx context.Context, event audit.Event) error {
	payload := recordPayload{
		Category:          string(event.Category),
		Timestamp:         event.Timestamp.Format(time.RFC3339Nano),
		Action:            event.Action,
		Zone:              event.Zone,
		Mode:              event.Mode,
		Reason:            event.Reason,
		RecognizedMinutes: event.RecognizedMinutes,
		CodeHash:          event.CodeHash,
		ActorID:           event.ActorID,
		RequestID:         event.RequestID,
	}
	if !event.AttendeeID.IsNil() {
		payload.AttendeeID = event.AttendeeID.String()
	}
	if !event.EventID.IsNil() {
		payload.EventID = event.EventID.String()
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(payload.AttendeeID),
		Value: value,
	}
	s.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			s.logger.Error("audit produce failed",
				"topic", s.topic,
				"action", event.Action,
				"error", err,
			)
		}
	})
	return nil
}

// ListByAttendee is unsupported: Kafka is a one-way stream from this service.
func (s *KafkaStore) ListByAttendee(context.Context, id.AttendeeID) ([]audit.Event, error) {
	return nil, sentinel.ErrUnavailable
}

// Close flushes buffered records and releases the client.
func (s *KafkaStore) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.client.Flush(ctx)
	s.client.Close()
}
