package service

import (
	"context"
	"time"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/logger"
	ordermodel "mpay-order-api/internal/model/order"
)

// AdminStore OrderDao 实现
type AdminStore interface {
	GetByOrderID(ctx context.Context, orderID string) (*ordermodel.Order, error)
	MarkPaid(ctx context.Context, orderID string, payTime time.Time, platformOrder string) (int64, error)
}

// DirectNotifier notify.Client 实现
type DirectNotifier interface {
	SendOnce(ctx context.Context, o *ordermodel.Order) error
}

// NotifyLogWriter notify.LogService 实现
type NotifyLogWriter interface {
	RecordFailure(ctx context.Context, o *ordermodel.Order, lastErr string, retries int) error
	MarkSucceeded(ctx context.Context, orderID string) error
}

// Sweeper 手动触发一轮过期关闭
type Sweeper interface {
	RunOnce(ctx context.Context) (int64, error)
}

// AdminOrderService 人工补单、重发通知
type AdminOrderService struct {
	store    AdminStore
	notifier DirectNotifier
	logs     NotifyLogWriter
	sweeper  Sweeper
	hooks    paidHooks
	now      func() time.Time
}

func NewAdminOrderService(store AdminStore, notifier DirectNotifier, logs NotifyLogWriter, sweeper Sweeper,
	events OrderEventPublisher, dispatcher PaidDispatcher, pusher PaymentPusher) *AdminOrderService {
	return &AdminOrderService{
		store:    store,
		notifier: notifier,
		logs:     logs,
		sweeper:  sweeper,
		hooks:    paidHooks{events: events, dispatcher: dispatcher, pusher: pusher},
		now:      time.Now,
	}
}

// ManualSettle 只允许待支付订单，和匹配、过期一样走条件更新
func (s *AdminOrderService) ManualSettle(ctx context.Context, orderID string) (*ordermodel.Order, error) {
	o, err := s.store.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, constant.WrapError(constant.CodeDatabaseError, err)
	}
	if o == nil {
		return nil, constant.NewError(constant.CodeOrderNotFound)
	}
	if err := stateError(o); err != nil {
		return nil, err
	}

	payTime := s.now()
	n, err := s.store.MarkPaid(ctx, orderID, payTime, "")
	if err != nil {
		return nil, constant.WrapError(constant.CodeDatabaseError, err)
	}
	if n == 0 {
		// 查询之后被抢先处理，重新读一次给出准确状态
		if cur, qerr := s.store.GetByOrderID(ctx, orderID); qerr == nil && cur != nil {
			if err := stateError(cur); err != nil {
				return nil, err
			}
		}
		return nil, constant.NewError(constant.CodeOrderStateConflict)
	}

	o.Status = ordermodel.StatusPaid
	o.PayTime = &payTime
	o.PriceSlot = nil
	logger.L.Infof("[ADMIN] ✅ 手动补单 orderId=%s", orderID)
	s.hooks.afterPaid(ctx, o)
	return o, nil
}

// Renotify 对已支付订单直接发送一次，失败写入通知日志交给重试调度
func (s *AdminOrderService) Renotify(ctx context.Context, orderID string) error {
	o, err := s.store.GetByOrderID(ctx, orderID)
	if err != nil {
		return constant.WrapError(constant.CodeDatabaseError, err)
	}
	if o == nil {
		return constant.NewError(constant.CodeOrderNotFound)
	}
	if !o.IsPaid() {
		return constant.NewError(constant.CodeOrderNotPaid)
	}

	if sendErr := s.notifier.SendOnce(ctx, o); sendErr != nil {
		logger.L.Warnf("[ADMIN] 重发通知失败 orderId=%s: %v", orderID, sendErr)
		if err := s.logs.RecordFailure(context.WithoutCancel(ctx), o, sendErr.Error(), 1); err != nil {
			return constant.WrapError(constant.CodeDatabaseError, err)
		}
		return sendErr
	}
	if err := s.logs.MarkSucceeded(ctx, orderID); err != nil {
		logger.L.Warnf("[ADMIN] 更新通知日志失败 orderId=%s: %v", orderID, err)
	}
	logger.L.Infof("[ADMIN] ✅ 重发通知成功 orderId=%s", orderID)
	return nil
}

// ExpireNow 立即执行一轮过期关闭
func (s *AdminOrderService) ExpireNow(ctx context.Context) (int64, error) {
	n, err := s.sweeper.RunOnce(ctx)
	if err != nil {
		return n, constant.WrapError(constant.CodeDatabaseError, err)
	}
	return n, nil
}

func stateError(o *ordermodel.Order) error {
	switch {
	case o.IsPaid():
		return constant.NewError(constant.CodeOrderPaid)
	case o.IsClosed():
		return constant.NewError(constant.CodeOrderClosed)
	}
	return nil
}
