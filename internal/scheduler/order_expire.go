package scheduler

import (
	"context"
	"time"

	"mpay-order-api/internal/logger"
	ordermodel "mpay-order-api/internal/model/order"
)

// ExpireStore OrderDao 实现
type ExpireStore interface {
	ListExpiredPendingIDs(ctx context.Context, before time.Time, limit int) ([]string, error)
	CloseExpired(ctx context.Context, orderIDs []string, before, closeTime time.Time) (int64, error)
	ListByOrderIDs(ctx context.Context, orderIDs []string) ([]ordermodel.Order, error)
}

// StatePublisher 心跳流
type StatePublisher interface {
	Publish(ctx context.Context, o *ordermodel.Order) error
}

// FailurePusher 浏览器推送
type FailurePusher interface {
	PushFailed(orderID, reason string)
}

const expireBatch = 500

// OrderScheduler 关闭超时未支付的订单
type OrderScheduler struct {
	store    ExpireStore
	events   StatePublisher
	pusher   FailurePusher
	window   time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewOrderScheduler(store ExpireStore, events StatePublisher, pusher FailurePusher, window, interval time.Duration) *OrderScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &OrderScheduler{
		store:    store,
		events:   events,
		pusher:   pusher,
		window:   window,
		interval: interval,
		now:      time.Now,
	}
}

func (s *OrderScheduler) Run(ctx context.Context) {
	logger.L.Infof("[ORDER-EXPIRE] 调度启动 window=%s interval=%s", s.window, s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.L.Info("[ORDER-EXPIRE] 调度停止")
			return
		case <-ticker.C:
			if n, err := s.RunOnce(ctx); err != nil {
				logger.L.Errorf("[ORDER-EXPIRE] 关闭过期订单失败: %v", err)
			} else if n > 0 {
				logger.L.Infof("[ORDER-EXPIRE] 本轮关闭 %d 笔订单", n)
			}
		}
	}
}

// RunOnce 分批关闭创建时间早于窗口的待支付订单，返回关闭数量
// 关闭用 status = 待支付 的条件更新，与匹配支付互斥
func (s *OrderScheduler) RunOnce(ctx context.Context) (int64, error) {
	now := s.now()
	cutoff := now.Add(-s.window)
	var total int64
	for {
		ids, err := s.store.ListExpiredPendingIDs(ctx, cutoff, expireBatch)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		n, err := s.store.CloseExpired(ctx, ids, cutoff, now)
		if err != nil {
			return total, err
		}
		total += n
		s.announce(ctx, ids)
		if len(ids) < expireBatch {
			return total, nil
		}
	}
}

// announce 只对真正被本轮关闭的订单发事件，和本轮竞争中被支付的订单跳过
func (s *OrderScheduler) announce(ctx context.Context, ids []string) {
	list, err := s.store.ListByOrderIDs(ctx, ids)
	if err != nil {
		logger.L.Warnf("[ORDER-EXPIRE] 查询已关闭订单失败: %v", err)
		return
	}
	for i := range list {
		o := &list[i]
		if !o.IsClosed() {
			continue
		}
		if s.events != nil {
			if err := s.events.Publish(ctx, o); err != nil {
				logger.L.Warnf("[ORDER-EXPIRE] 心跳事件发送失败 orderId=%s: %v", o.OrderID, err)
			}
		}
		if s.pusher != nil {
			s.pusher.PushFailed(o.OrderID, "订单已过期")
		}
	}
}
