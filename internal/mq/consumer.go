package mq

import (
	"context"
	"fmt"

	"mpay-order-api/internal/dal"
	"mpay-order-api/internal/logger"

	"github.com/streadway/amqp"
)

// StartConsumer 消费指定队列直到 ctx 取消或通道关闭，handler 自行 Ack/Nack
func StartConsumer(ctx context.Context, queue, tag string, handler func(amqp.Delivery)) error {
	if dal.RabbitCh == nil {
		return fmt.Errorf("rabbitmq channel not initialized")
	}
	if err := dal.RabbitCh.Qos(16, 0, false); err != nil {
		return fmt.Errorf("qos %s: %w", queue, err)
	}
	msgs, err := dal.RabbitCh.Consume(queue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}
	logger.L.Infof("📥 [MQ] consumer started queue=%s", queue)

	for {
		select {
		case <-ctx.Done():
			_ = dal.RabbitCh.Cancel(tag, false)
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consumer %s channel closed", queue)
			}
			handler(d)
		}
	}
}
