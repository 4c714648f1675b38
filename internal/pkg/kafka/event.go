package kafka

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	EventPostCreated = "PostCreated"
	EventPostLiked   = "PostLiked"
	EventPostUnliked = "PostUnliked"
	EventUserCreated = "UserCreated"
)

// EventMessage 写侧发布的领域事件信封
type EventMessage struct {
	EventID    string          `json:"eventId"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type PostCreatedPayload struct {
	PostID      uint64    `json:"postId"`
	AuthorID    uint64    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	ImageURL    string    `json:"imageUrl"`
	TextContent string    `json:"textContent"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PostLikedPayload struct {
	PostID uint64 `json:"postId"`
	UserID uint64 `json:"userId"`
}

type UserCreatedPayload struct {
	UserID    uint64    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// DecodeEvent 将 kafka 消息解析为事件信封
func DecodeEvent(msg *sarama.ConsumerMessage) (*EventMessage, error) {
	var evt EventMessage
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return nil, errors.Wrap(err, "unmarshal event envelope")
	}
	if evt.Type == "" {
		return nil, errors.New("event type is empty")
	}
	return &evt, nil
}

// DecodePayload 解析事件体
func DecodePayload[T any](evt *EventMessage) (*T, error) {
	var payload T
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s payload", evt.Type)
	}
	return &payload, nil
}
