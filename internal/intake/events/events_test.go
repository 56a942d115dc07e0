package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/aussiebroadwan/leadflow/internal/intake/events"
	"github.com/aussiebroadwan/leadflow/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestEventPayload(t *testing.T) {
	e := events.New(events.ChallengeSubmitted, "ch-1", map[string]string{"challengeId": "ch-1"})
	require.True(t, idx.Valid(e.ID))

	raw, err := e.Payload()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "challenge.submitted", decoded["type"])
	require.Equal(t, map[string]any{"challengeId": "ch-1"}, decoded["data"])
	require.NotContains(t, decoded, "Key")
}

func TestKafkaPublisherConfig(t *testing.T) {
	_, err := events.NewKafkaPublisher(nil, "leadflow.")
	require.Error(t, err)

	p, err := events.NewKafkaPublisher([]string{"localhost:9092"}, "leadflow.")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	require.Equal(t, "leadflow.document.deleted", p.Topic(events.DocumentDeleted))
}

func TestLoggingPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := events.NewLoggingPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, p.Publish(context.Background(), events.New(events.DocumentUploaded, "doc-1", nil)))
	require.Contains(t, buf.String(), `"event_type":"document.uploaded"`)
}

func TestRecorder(t *testing.T) {
	var r events.Recorder
	_ = r.Publish(context.Background(), events.New(events.ChallengeVerified, "a", nil))
	_ = r.Publish(context.Background(), events.New(events.ChallengeClaimed, "a", nil))
	require.Equal(t, []string{events.ChallengeVerified, events.ChallengeClaimed}, r.Types())
}
