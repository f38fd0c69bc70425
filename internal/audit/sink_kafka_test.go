package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	topic string
	key   []byte
	value []byte
	err   error
}

func (p *recordingProducer) Produce(_ context.Context, topic string, key, value []byte) error {
	p.topic = topic
	p.key = key
	p.value = value
	return p.err
}

func TestKafkaSink_ProducesKeyedBySubject(t *testing.T) {
	producer := &recordingProducer{}
	sink := NewKafkaSink(producer, "")

	event := Event{
		ID:      uuid.New(),
		Kind:    KindLoginFailed,
		Actor:   testSubject,
		Subject: testSubject,
		Outcome: "signature_mismatch",
		At:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, sink.Append(context.Background(), event))

	assert.Equal(t, Topic, producer.topic)
	assert.Equal(t, []byte(testSubject), producer.key)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(producer.value, &payload))
	assert.Equal(t, event.ID.String(), payload["id"])
	assert.Equal(t, string(KindLoginFailed), payload["kind"])
	assert.Equal(t, "signature_mismatch", payload["outcome"])
	assert.Equal(t, string(CategorySecurity), payload["category"])
}

func TestKafkaSink_CustomTopic(t *testing.T) {
	producer := &recordingProducer{}
	sink := NewKafkaSink(producer, "sigil.audit.staging")

	require.NoError(t, sink.Append(context.Background(), Event{
		Kind:    KindCodeIssued,
		Subject: testSubject,
	}))
	assert.Equal(t, "sigil.audit.staging", producer.topic)
}

func TestKafkaSink_PropagatesProduceError(t *testing.T) {
	producer := &recordingProducer{err: assert.AnError}
	sink := NewKafkaSink(producer, "")

	err := sink.Append(context.Background(), Event{
		Kind:    KindLoginSucceeded,
		Subject: testSubject,
	})
	require.ErrorIs(t, err, assert.AnError)
}

func TestKind_Category(t *testing.T) {
	assert.Equal(t, CategoryCompliance, KindAccountRegistered.Category())
	assert.Equal(t, CategoryCompliance, KindDocumentConfirmed.Category())
	assert.Equal(t, CategorySecurity, KindAccountLocked.Category())
	assert.Equal(t, CategorySecurity, KindAccessDenied.Category())
	assert.Equal(t, CategoryOperations, KindTokenRefreshed.Category())
	assert.Equal(t, CategoryOperations, Kind("made.up").Category())
}
