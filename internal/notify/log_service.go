package notify

import (
	"context"
	"time"
	"unicode/utf8"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/dao"
	ordermodel "mpay-order-api/internal/model/order"
)

// RetryIntervals 异步重试间隔，超过长度后一直用最后一个
var RetryIntervals = []time.Duration{
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	60 * time.Minute,
	120 * time.Minute,
	360 * time.Minute,
	720 * time.Minute,
	1440 * time.Minute,
}

const orderNotFoundError = "order not found"

// LogService 通知失败记录，驱动异步重试
type LogService struct {
	dao            *dao.NotifyLogDao
	inlineAttempts int
	maxRetries     int // 总尝试次数上限，0 不限
	lease          time.Duration
	now            func() time.Time
}

type LogOptions struct {
	InlineAttempts int
	MaxRetries     int
	ClaimLease     time.Duration
}

func NewLogService(d *dao.NotifyLogDao, opt LogOptions) *LogService {
	if opt.InlineAttempts <= 0 {
		opt.InlineAttempts = 3
	}
	if opt.ClaimLease <= 0 {
		opt.ClaimLease = 2 * time.Minute
	}
	return &LogService{
		dao:            d,
		inlineAttempts: opt.InlineAttempts,
		maxRetries:     opt.MaxRetries,
		lease:          opt.ClaimLease,
		now:            time.Now,
	}
}

// NextDelay 第 k 次异步重试失败后的等待时间（k 从 1 开始）
func NextDelay(k int) time.Duration {
	if k < 0 {
		k = 0
	}
	if k >= len(RetryIntervals) {
		k = len(RetryIntervals) - 1
	}
	return RetryIntervals[k]
}

// RecordFailure 同步重试用完后写入待重试记录，5 分钟后第一次异步重试
func (s *LogService) RecordFailure(ctx context.Context, o *ordermodel.Order, lastErr string, retries int) error {
	return s.dao.UpsertPending(ctx, &ordermodel.NotifyLog{
		OrderID:     o.OrderID,
		MID:         o.MID,
		Status:      ordermodel.NotifyPendingRetry,
		RetryCount:  retries,
		LastError:   truncate(lastErr, 1000),
		NextRetryAt: s.now().Add(NextDelay(0)),
	})
}

// Due 到期的待重试记录
func (s *LogService) Due(ctx context.Context, limit int) ([]ordermodel.NotifyLog, error) {
	return s.dao.ListDue(ctx, s.now(), limit)
}

// Claim 认领成功后 row.Version 更新为认领后的值，后续回写以它为条件
func (s *LogService) Claim(ctx context.Context, row *ordermodel.NotifyLog) (bool, error) {
	ok, err := s.dao.Claim(ctx, row.ID, row.Version, s.now().Add(s.lease))
	if err != nil || !ok {
		return false, err
	}
	row.Version++
	return true, nil
}

func (s *LogService) RecordSuccess(ctx context.Context, row *ordermodel.NotifyLog) error {
	_, err := s.dao.UpdateResult(ctx, row.ID, row.Version, map[string]interface{}{
		"status":      ordermodel.NotifySucceeded,
		"retry_count": row.RetryCount + 1,
		"last_error":  "",
	})
	return err
}

// RecordRetryFailure 次数加一并推迟下次重试，达到上限返回 exhausted=true
func (s *LogService) RecordRetryFailure(ctx context.Context, row *ordermodel.NotifyLog, lastErr string) (bool, error) {
	count := row.RetryCount + 1
	fields := map[string]interface{}{
		"retry_count": count,
		"last_error":  truncate(lastErr, 1000),
	}
	exhausted := s.maxRetries > 0 && count >= s.maxRetries
	if exhausted {
		fields["status"] = ordermodel.NotifyExhausted
	} else {
		fields["next_retry_at"] = s.now().Add(NextDelay(count - s.inlineAttempts))
	}
	_, err := s.dao.UpdateResult(ctx, row.ID, row.Version, fields)
	return exhausted, err
}

// MarkOrderMissing 订单已不存在，终止重试并留下明确原因
func (s *LogService) MarkOrderMissing(ctx context.Context, row *ordermodel.NotifyLog) error {
	_, err := s.dao.UpdateResult(ctx, row.ID, row.Version, map[string]interface{}{
		"status":     ordermodel.NotifyExhausted,
		"last_error": orderNotFoundError,
	})
	return err
}

// MarkSucceeded 手动补发成功
func (s *LogService) MarkSucceeded(ctx context.Context, orderID string) error {
	return s.dao.MarkSucceededByOrder(ctx, orderID)
}

// Get 没有记录返回 CodeNotifyLogNotFound
func (s *LogService) Get(ctx context.Context, orderID string) (*ordermodel.NotifyLog, error) {
	row, err := s.dao.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, constant.WrapError(constant.CodeDatabaseError, err)
	}
	if row == nil {
		return nil, constant.NewError(constant.CodeNotifyLogNotFound)
	}
	return row, nil
}

func (s *LogService) List(ctx context.Context, q dao.NotifyLogQuery) ([]ordermodel.NotifyLog, int64, error) {
	list, total, err := s.dao.List(ctx, q)
	if err != nil {
		return nil, 0, constant.WrapError(constant.CodeDatabaseError, err)
	}
	return list, total, nil
}

// truncate 最多 n 字节，不切断多字节字符
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
