package kafka

import (
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
)

const (
	batchSize    = 32
	batchTimeout = 1 * time.Second
)

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 拉取一批消息并执行业务逻辑
// 处理失败不做本地重试：错误向上抛出且不提交位点，
// 由 broker 的重投递与死信路径兜底
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				if len(batch) > 0 {
					return processBatch(session, batch, logic)
				}
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				if err := processBatch(session, batch, logic); err != nil {
					return err
				}
				// 清空缓冲区 & 重置定时器
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				if err := processBatch(session, batch, logic); err != nil {
					return err
				}
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// processBatch 按到达顺序逐条处理，保证同队列内有序
// 每条成功即标记位点，失败的那条留待重投递
func processBatch(session sarama.ConsumerGroupSession, messages []*sarama.ConsumerMessage, logic LogicFunc) error {
	for _, msg := range messages {
		if err := logic(session.Context(), msg); err != nil {
			log.Error("process message error", "topic", msg.Topic, "offset", msg.Offset, "err", err)
			return err
		}
		session.MarkMessage(msg, "")
	}
	return nil
}
