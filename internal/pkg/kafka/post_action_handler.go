package kafka

import (
	"Ripple/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// PostActionsHandler 消费点赞/取消点赞事件
type PostActionsHandler struct {
	projectionSvc service.ProjectionService
}

func NewPostActionsHandler(projectionSvc service.ProjectionService) *PostActionsHandler {
	return &PostActionsHandler{
		projectionSvc: projectionSvc,
	}
}

func (s *PostActionsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("post action consumer setup")
	return nil
}

func (s *PostActionsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("post action consumer cleanup")
	return nil
}

func (s *PostActionsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-post-action consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-post-action process batch error", "err", err)
		return err
	}
	return nil
}

func (s *PostActionsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	evt, err := DecodeEvent(msg)
	if err != nil {
		return err
	}

	payload, err := DecodePayload[PostLikedPayload](evt)
	if err != nil {
		return err
	}

	switch evt.Type {
	case EventPostLiked:
		return s.projectionSvc.ProjectPostLiked(ctx, payload.PostID, payload.UserID)
	case EventPostUnliked:
		return s.projectionSvc.ProjectPostUnliked(ctx, payload.PostID, payload.UserID)
	default:
		log.WarnContext(ctx, "unexpected event on post action topic, skipped", "type", evt.Type, "eventID", evt.EventID)
		return nil
	}
}
