package service

import (
	"context"

	"mpay-order-api/internal/logger"
	ordermodel "mpay-order-api/internal/model/order"
)

// OrderEventPublisher 心跳流，heartbeat.Stream 实现
type OrderEventPublisher interface {
	Publish(ctx context.Context, o *ordermodel.Order) error
}

// PaidDispatcher 异步商户通知，notify.AsyncDispatcher 或 mq.PaidDispatcher
type PaidDispatcher interface {
	DispatchPaid(o *ordermodel.Order)
}

// PaymentPusher 浏览器推送，入队即返回
type PaymentPusher interface {
	PushSuccess(orderID, tradeNo string)
	PushFailed(orderID, reason string)
}

// paidHooks 订单转为已支付之后的收尾，匹配和手动补单共用
// 都不影响订单状态，失败只记日志
type paidHooks struct {
	events     OrderEventPublisher
	dispatcher PaidDispatcher
	pusher     PaymentPusher
}

func (h paidHooks) afterPaid(ctx context.Context, o *ordermodel.Order) {
	if h.events != nil {
		if err := h.events.Publish(ctx, o); err != nil {
			logger.L.Warnf("[ORDER] 心跳事件发送失败 orderId=%s: %v", o.OrderID, err)
		}
	}
	if h.dispatcher != nil {
		h.dispatcher.DispatchPaid(o)
	}
	if h.pusher != nil {
		h.pusher.PushSuccess(o.OrderID, o.PlatformOrder)
	}
}
