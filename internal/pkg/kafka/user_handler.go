package kafka

import (
	"Ripple/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// UsersHandler 消费 UserCreated 事件
type UsersHandler struct {
	projectionSvc service.ProjectionService
}

func NewUsersHandler(projectionSvc service.ProjectionService) *UsersHandler {
	return &UsersHandler{
		projectionSvc: projectionSvc,
	}
}

func (s *UsersHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("user consumer setup")
	return nil
}

func (s *UsersHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("user consumer cleanup")
	return nil
}

func (s *UsersHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-user consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-user process batch error", "err", err)
		return err
	}
	return nil
}

func (s *UsersHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	evt, err := DecodeEvent(msg)
	if err != nil {
		return err
	}

	if evt.Type != EventUserCreated {
		log.WarnContext(ctx, "unexpected event on user topic, skipped", "type", evt.Type, "eventID", evt.EventID)
		return nil
	}

	payload, err := DecodePayload[UserCreatedPayload](evt)
	if err != nil {
		return err
	}

	err = s.projectionSvc.ProjectUserCreated(ctx, payload.UserID, payload.Name, payload.Email, payload.CreatedAt)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "user projected", "userID", payload.UserID, "eventID", evt.EventID)
	return nil
}
