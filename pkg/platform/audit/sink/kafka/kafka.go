// Package kafka publishes audit events to a Kafka topic. Kafka is the
// downstream source of truth for long-retention audit consumers; the local
// store remains queryable for the API.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "facegate/pkg/platform/audit"
)

// Sink publishes audit events to a Kafka topic, keyed by subject so one
// subject's events stay ordered within a partition.
type Sink struct {
	client *kgo.Client
	topic  string
}

// payload is the JSON structure written to the topic.
type payload struct {
	Category   string  `json:"category"`
	Timestamp  string  `json:"timestamp"`
	SubjectID  string  `json:"subject_id,omitempty"`
	StationID  string  `json:"station_id,omitempty"`
	Action     string  `json:"action"`
	Decision   string  `json:"decision,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Device     string  `json:"device,omitempty"`
	IP         string  `json:"ip,omitempty"`
	RequestID  string  `json:"request_id,omitempty"`
	Severity   string  `json:"severity,omitempty"`
}

// New connects to the brokers and ensures the topic exists.
func New(ctx context.Context, brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", resp.Err)
	}

	return &Sink{client: client, topic: topic}, nil
}

// Publish writes one event and waits for broker acknowledgement.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(payload{
		Category:   string(event.Category),
		Timestamp:  event.Timestamp.Format(time.RFC3339Nano),
		SubjectID:  event.SubjectID,
		StationID:  event.StationID,
		Action:     event.Action,
		Decision:   event.Decision,
		Reason:     event.Reason,
		Confidence: event.Confidence,
		Device:     event.Device,
		IP:         event.IP,
		RequestID:  event.RequestID,
		Severity:   string(event.Severity),
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.SubjectID),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes pending records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}
