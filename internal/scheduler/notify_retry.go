package scheduler

import (
	"context"
	"time"

	"mpay-order-api/internal/logger"
	ordermodel "mpay-order-api/internal/model/order"
	"mpay-order-api/internal/notify"
	"mpay-order-api/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// OrderGetter OrderDao 实现
type OrderGetter interface {
	GetByOrderID(ctx context.Context, orderID string) (*ordermodel.Order, error)
}

// OnceSender notify.Client 实现
type OnceSender interface {
	SendOnce(ctx context.Context, o *ordermodel.Order) error
}

// NotifyRetryScheduler 定时重试失败的商户通知
// 多实例同时运行时靠 LogService.Claim 的条件更新保证同一行只会被一个实例发送
type NotifyRetryScheduler struct {
	logs     *notify.LogService
	orders   OrderGetter
	sender   OnceSender
	alerter  notify.Alerter
	interval time.Duration
	batch    int
	timeout  time.Duration
	limiter  *rate.Limiter
}

type NotifyRetryOptions struct {
	Interval  time.Duration
	BatchSize int
	Timeout   time.Duration // 单次发送上限
	QPS       float64
	Alerter   notify.Alerter
}

func NewNotifyRetryScheduler(logs *notify.LogService, orders OrderGetter, sender OnceSender, opt NotifyRetryOptions) *NotifyRetryScheduler {
	if opt.Interval <= 0 {
		opt.Interval = time.Minute
	}
	if opt.BatchSize <= 0 {
		opt.BatchSize = 100
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 5 * time.Second
	}
	limit := rate.Inf
	if opt.QPS > 0 {
		limit = rate.Limit(opt.QPS)
	}
	return &NotifyRetryScheduler{
		logs:     logs,
		orders:   orders,
		sender:   sender,
		alerter:  opt.Alerter,
		interval: opt.Interval,
		batch:    opt.BatchSize,
		timeout:  opt.Timeout,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Run 阻塞直到 ctx 取消
func (s *NotifyRetryScheduler) Run(ctx context.Context) {
	logger.L.Infof("[NOTIFY-RETRY] 调度启动 interval=%s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.L.Info("[NOTIFY-RETRY] 调度停止")
			return
		case <-ticker.C:
			if n, err := s.RunOnce(ctx); err != nil {
				logger.L.Errorf("[NOTIFY-RETRY] 本轮执行失败: %v", err)
			} else if n > 0 {
				logger.L.Infof("[NOTIFY-RETRY] 本轮处理 %d 条", n)
			}
		}
	}
}

// RunOnce 处理一批到期记录，返回实际发送的条数
func (s *NotifyRetryScheduler) RunOnce(ctx context.Context) (int, error) {
	rows, err := s.logs.Due(ctx, s.batch)
	if err != nil {
		return 0, err
	}
	processed := 0
	for i := range rows {
		// 未认领的行留给下一轮，已认领的行租约到期后会重新到期
		if err := s.limiter.Wait(ctx); err != nil {
			return processed, nil
		}
		if s.process(ctx, &rows[i]) {
			processed++
		}
	}
	return processed, nil
}

func (s *NotifyRetryScheduler) process(ctx context.Context, row *ordermodel.NotifyLog) bool {
	entry := logger.L.WithFields(logrus.Fields{"orderId": row.OrderID, "retryCount": row.RetryCount})

	ok, err := s.logs.Claim(ctx, row)
	if err != nil {
		entry.Errorf("[NOTIFY-RETRY] 认领失败: %v", err)
		return false
	}
	if !ok {
		// 被其他实例抢先
		return false
	}

	// 认领之后的发送和回写不受关停影响，避免白白占用租约
	workCtx := context.WithoutCancel(ctx)

	o, err := s.orders.GetByOrderID(workCtx, row.OrderID)
	if err != nil {
		entry.Errorf("[NOTIFY-RETRY] 查询订单失败，等待租约到期后重试: %v", err)
		return false
	}
	if o == nil {
		if err := s.logs.MarkOrderMissing(workCtx, row); err != nil {
			entry.Errorf("[NOTIFY-RETRY] 标记订单不存在失败: %v", err)
		}
		entry.Warn("[NOTIFY-RETRY] 订单不存在，停止重试")
		return true
	}

	sendCtx, cancel := context.WithTimeout(workCtx, s.timeout)
	sendErr := s.sender.SendOnce(sendCtx, o)
	cancel()

	if sendErr == nil {
		if err := s.logs.RecordSuccess(workCtx, row); err != nil {
			entry.Errorf("[NOTIFY-RETRY] 回写成功状态失败: %v", err)
		}
		entry.Info("[NOTIFY-RETRY] ✅ 重试通知成功")
		return true
	}

	exhausted, err := s.logs.RecordRetryFailure(workCtx, row, sendErr.Error())
	if err != nil {
		entry.Errorf("[NOTIFY-RETRY] 回写失败状态失败: %v", err)
		return true
	}
	if exhausted {
		entry.Errorf("[NOTIFY-RETRY] ❌ 已达最大重试次数: %v", sendErr)
		if s.alerter != nil {
			s.alerter.Alert("商户通知重试次数已用完", map[string]string{
				"订单号":  o.OrderID,
				"商户号":  utils.FormatUint(o.MID),
				"通知地址": o.NotifyURL,
				"最后错误": sendErr.Error(),
			})
		}
	} else {
		entry.Warnf("[NOTIFY-RETRY] 重试失败: %v", sendErr)
	}
	return true
}
