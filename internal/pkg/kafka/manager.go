package kafka

import (
	"Ripple/internal/api/config"
	"Ripple/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	postConsumer sarama.ConsumerGroup
	postHandler  sarama.ConsumerGroupHandler

	postActionConsumer sarama.ConsumerGroup
	postActionHandler  sarama.ConsumerGroupHandler

	userConsumer sarama.ConsumerGroup
	userHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	projectionSvc service.ProjectionService,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	postConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaPostConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	postHandler := NewPostsHandler(projectionSvc)

	postActionConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaPostActionConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	postActionHandler := NewPostActionsHandler(projectionSvc)

	userConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaUserConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	userHandler := NewUsersHandler(projectionSvc)

	return &ConsumerManager{
		postConsumer:       postConsumer,
		postHandler:        postHandler,
		postActionConsumer: postActionConsumer,
		postActionHandler:  postActionHandler,
		userConsumer:       userConsumer,
		userHandler:        userHandler,
	}, nil
}

// Start 启动所有消费者
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	// 启动 Post Consumer
	go func() {
		topic := cfg.KafkaPostConsumer.Topic
		log.Info("Post consumer started", "topic", topic)
		for {
			if err := m.postConsumer.Consume(ctx, []string{topic}, m.postHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	// 启动 Post Action Consumer
	go func() {
		topic := cfg.KafkaPostActionConsumer.Topic
		log.Info("Post Action consumer started", "topic", topic)
		for {
			if err := m.postActionConsumer.Consume(ctx, []string{topic}, m.postActionHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	// 启动 User Consumer
	go func() {
		topic := cfg.KafkaUserConsumer.Topic
		log.Info("User consumer started", "topic", topic)
		for {
			if err := m.userConsumer.Consume(ctx, []string{topic}, m.userHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.postConsumer.Close(); err != nil {
		log.Error("Failed to close post consumer", "err", err)
	}
	if err := m.postActionConsumer.Close(); err != nil {
		log.Error("Failed to close post action consumer", "err", err)
	}
	if err := m.userConsumer.Close(); err != nil {
		log.Error("Failed to close user consumer", "err", err)
	}

	return nil
}
