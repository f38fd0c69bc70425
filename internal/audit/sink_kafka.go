package audit

import (
	"context"
	"encoding/json"
	"fmt"
)

// Topic is the Kafka topic audit events are produced to.
const Topic = "sigil.audit"

// Producer is the subset of the Kafka client the sink needs.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// KafkaSink produces events to a Kafka topic, keyed by subject so one
// identity's trail stays ordered within a partition. The JSON payload
// carries the kind's category for downstream routing.
type KafkaSink struct {
	producer Producer
	topic    string
}

func NewKafkaSink(producer Producer, topic string) *KafkaSink {
	if topic == "" {
		topic = Topic
	}
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	payload := struct {
		Event
		Category Category `json:"category"`
	}{Event: event, Category: event.Kind.Category()}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.producer.Produce(ctx, s.topic, []byte(event.Subject), value)
}
