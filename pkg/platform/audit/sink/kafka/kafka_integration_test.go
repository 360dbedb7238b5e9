//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "facegate/pkg/platform/audit"
	"facegate/pkg/platform/audit/sink/kafka"
	"facegate/pkg/testutil/containers"
)

func TestSinkPublishRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)

	const topic = "facegate.audit"
	sink, err := kafka.New(ctx, []string{redpanda.SeedBroker}, topic)
	require.NoError(t, err)
	defer sink.Close()

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	err = sink.Publish(ctx, audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: at,
		SubjectID: "emp-7",
		Action:    string(audit.EventCheckInRecorded),
		Decision:  "recorded",
		RequestID: "req-1",
	})
	require.NoError(t, err)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.SeedBroker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, "emp-7", string(records[0].Key))

	var payload struct {
		Category  string `json:"category"`
		SubjectID string `json:"subject_id"`
		Action    string `json:"action"`
		Decision  string `json:"decision"`
	}
	require.NoError(t, json.Unmarshal(records[0].Value, &payload))
	require.Equal(t, "compliance", payload.Category)
	require.Equal(t, "emp-7", payload.SubjectID)
	require.Equal(t, string(audit.EventCheckInRecorded), payload.Action)
	require.Equal(t, "recorded", payload.Decision)
}

func TestSinkTopicAlreadyExists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)

	const topic = "facegate.audit"
	first, err := kafka.New(ctx, []string{redpanda.SeedBroker}, topic)
	require.NoError(t, err)
	first.Close()

	second, err := kafka.New(ctx, []string{redpanda.SeedBroker}, topic)
	require.NoError(t, err)
	second.Close()
}
