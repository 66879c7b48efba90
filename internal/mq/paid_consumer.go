package mq

import (
	"context"
	"encoding/json"

	"mpay-order-api/internal/dal"
	"mpay-order-api/internal/event"
	"mpay-order-api/internal/logger"
	ordermodel "mpay-order-api/internal/model/order"

	"github.com/streadway/amqp"
)

// OrderLoader OrderDao 实现
type OrderLoader interface {
	GetByOrderID(ctx context.Context, orderID string) (*ordermodel.Order, error)
}

// MerchantNotifier notify.Client 实现
type MerchantNotifier interface {
	NotifyMerchant(ctx context.Context, o *ordermodel.Order) error
}

// PaidConsumer 消费 order.paid，调用同步重试的商户通知
// 通知失败已经写进通知日志，由重试调度兜底，这里一律 Ack
type PaidConsumer struct {
	orders   OrderLoader
	notifier MerchantNotifier
}

func NewPaidConsumer(orders OrderLoader, notifier MerchantNotifier) *PaidConsumer {
	return &PaidConsumer{orders: orders, notifier: notifier}
}

func (c *PaidConsumer) Start(ctx context.Context) error {
	return StartConsumer(ctx, dal.QueueOrderPaid, "mpay-order-paid", func(d amqp.Delivery) {
		c.Handle(ctx, d)
	})
}

func (c *PaidConsumer) Handle(ctx context.Context, d amqp.Delivery) {
	var msg event.OrderPaidMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		logger.L.Errorf("❌ [ORDER-PAID] 消息解析失败: %v", err)
		_ = d.Nack(false, false)
		return
	}

	o, err := c.orders.GetByOrderID(ctx, msg.OrderID)
	if err != nil {
		// 数据库异常，重新入队
		logger.L.Errorf("❌ [ORDER-PAID] 查询订单失败 orderId=%s: %v", msg.OrderID, err)
		_ = d.Nack(false, true)
		return
	}
	if o == nil || !o.IsPaid() {
		logger.L.Warnf("[ORDER-PAID] 订单不存在或未支付，丢弃 orderId=%s", msg.OrderID)
		_ = d.Ack(false)
		return
	}

	_ = c.notifier.NotifyMerchant(ctx, o)
	_ = d.Ack(false)
}
