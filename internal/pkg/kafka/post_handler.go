package kafka

import (
	"Ripple/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// PostsHandler 消费 PostCreated 事件，驱动帖子投影与 Feed 扇出
type PostsHandler struct {
	projectionSvc service.ProjectionService
}

func NewPostsHandler(projectionSvc service.ProjectionService) *PostsHandler {
	return &PostsHandler{
		projectionSvc: projectionSvc,
	}
}

func (s *PostsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("post consumer setup")
	return nil
}

func (s *PostsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("post consumer cleanup")
	return nil
}

func (s *PostsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-post consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-post process batch error", "err", err)
		return err
	}
	return nil
}

func (s *PostsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	evt, err := DecodeEvent(msg)
	if err != nil {
		return err
	}

	if evt.Type != EventPostCreated {
		log.WarnContext(ctx, "unexpected event on post topic, skipped", "type", evt.Type, "eventID", evt.EventID)
		return nil
	}

	payload, err := DecodePayload[PostCreatedPayload](evt)
	if err != nil {
		return err
	}

	err = s.projectionSvc.ProjectPostCreated(ctx,
		payload.PostID, payload.AuthorID, payload.AuthorName,
		payload.TextContent, payload.ImageURL, payload.CreatedAt)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "post projected", "postID", payload.PostID, "eventID", evt.EventID)
	return nil
}
