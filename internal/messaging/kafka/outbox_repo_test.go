package kafka_test

import (
	"context"
	"encoding/json"
	"testing"

	"go-offboarding/internal/messaging/kafka"
	"go-offboarding/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxEvent(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "req-42")

	event, err := kafka.NewOutboxEvent(ctx, "separation", "sep-1", "separation_status_changed", "hr.offboarding.separation.v1",
		map[string]string{"to_status": "approved"})

	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "req-42", event.RequestID)
	assert.Equal(t, kafka.OutboxStatusPending, event.Status)
	assert.NoError(t, kafka.ValidateOutboxEvent(event))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, "approved", payload["to_status"])
}

func TestValidateOutboxEvent(t *testing.T) {
	valid := kafka.OutboxEvent{ID: "1", Topic: "t", Payload: []byte("{}"), Status: kafka.OutboxStatusPending}
	assert.NoError(t, kafka.ValidateOutboxEvent(valid))

	noTopic := valid
	noTopic.Topic = ""
	assert.Error(t, kafka.ValidateOutboxEvent(noTopic))

	badStatus := valid
	badStatus.Status = "queued"
	assert.Error(t, kafka.ValidateOutboxEvent(badStatus))
}
