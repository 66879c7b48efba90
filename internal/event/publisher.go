package event

// Publisher 消息总线，RabbitMQ 实现见 mq 包
type Publisher interface {
	Publish(topic string, msg any) error
}

const TopicOrderPaid = "order.paid"

// OrderPaidMessage 订单支付成功，消费方据此通知商户
type OrderPaidMessage struct {
	OrderID string `json:"order_id"`
	MID     uint64 `json:"m_id"`
	PaidAt  int64  `json:"paid_at"`
}
