package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	msg := &sarama.ConsumerMessage{Value: []byte(`{
		"eventId": "evt-1",
		"type": "PostLiked",
		"occurredAt": "2026-08-28T10:00:00Z",
		"payload": {"postId": 100, "userId": 7}
	}`)}

	evt, err := DecodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", evt.EventID)
	assert.Equal(t, EventPostLiked, evt.Type)

	payload, err := DecodePayload[PostLikedPayload](evt)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), payload.PostID)
	assert.Equal(t, uint64(7), payload.UserID)
}

func TestDecodeEventRejectsMalformed(t *testing.T) {
	_, err := DecodeEvent(&sarama.ConsumerMessage{Value: []byte(`not json`)})
	assert.Error(t, err)

	// 缺失事件类型视为非法
	_, err = DecodeEvent(&sarama.ConsumerMessage{Value: []byte(`{"eventId": "evt-2"}`)})
	assert.Error(t, err)
}

func TestDecodePayloadTypeMismatch(t *testing.T) {
	evt := &EventMessage{
		Type:    EventPostCreated,
		Payload: []byte(`{"postId": "not-a-number"}`),
	}
	_, err := DecodePayload[PostCreatedPayload](evt)
	assert.Error(t, err)
}
