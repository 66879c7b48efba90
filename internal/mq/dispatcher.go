package mq

import (
	"mpay-order-api/internal/event"
	"mpay-order-api/internal/logger"
	ordermodel "mpay-order-api/internal/model/order"
)

// Fallback 进程内投递
type Fallback interface {
	DispatchPaid(o *ordermodel.Order)
}

// PaidDispatcher 支付成功后发 order.paid，发布失败退回进程内异步通知，不丢通知
type PaidDispatcher struct {
	pub      event.Publisher
	fallback Fallback
}

func NewPaidDispatcher(pub event.Publisher, fallback Fallback) *PaidDispatcher {
	return &PaidDispatcher{pub: pub, fallback: fallback}
}

func (d *PaidDispatcher) DispatchPaid(o *ordermodel.Order) {
	msg := event.OrderPaidMessage{OrderID: o.OrderID, MID: o.MID}
	if o.PayTime != nil {
		msg.PaidAt = o.PayTime.Unix()
	}
	if err := d.pub.Publish(event.TopicOrderPaid, msg); err != nil {
		logger.L.Warnf("[MQ] 发布 order.paid 失败，改为进程内通知 orderId=%s: %v", o.OrderID, err)
		d.fallback.DispatchPaid(o)
	}
}
