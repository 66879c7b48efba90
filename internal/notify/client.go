package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/logger"
	ordermodel "mpay-order-api/internal/model/order"
	"mpay-order-api/internal/utils"

	"github.com/sirupsen/logrus"
)

// SecretProvider 商户密钥，未配置返回空串
type SecretProvider interface {
	Secret(ctx context.Context, mid uint64) (string, error)
}

// FailureRecorder 同步重试用完后的落库，LogService 实现
type FailureRecorder interface {
	RecordFailure(ctx context.Context, o *ordermodel.Order, lastErr string, retries int) error
}

// Alerter 运维告警
type Alerter interface {
	Alert(title string, fields map[string]string)
}

type Client struct {
	sender   Sender
	secrets  SecretProvider
	recorder FailureRecorder
	alerter  Alerter
	attempts int
	backoff  time.Duration
}

type ClientOptions struct {
	InlineAttempts int
	Backoff        time.Duration
	Alerter        Alerter
}

func NewClient(sender Sender, secrets SecretProvider, recorder FailureRecorder, opt ClientOptions) *Client {
	if opt.InlineAttempts <= 0 {
		opt.InlineAttempts = 3
	}
	if opt.Backoff <= 0 {
		opt.Backoff = 500 * time.Millisecond
	}
	return &Client{
		sender:   sender,
		secrets:  secrets,
		recorder: recorder,
		alerter:  opt.Alerter,
		attempts: opt.InlineAttempts,
		backoff:  opt.Backoff,
	}
}

// SendOnce 单次发送，不重试
func (c *Client) SendOnce(ctx context.Context, o *ordermodel.Order) error {
	secret, err := c.secrets.Secret(ctx, o.MID)
	if err != nil {
		return constant.WrapError(constant.CodeNotifyFailed, fmt.Errorf("load merchant secret: %w", err))
	}
	return c.sender.Send(ctx, o, BuildPayload(o, secret))
}

// NotifyMerchant 同步重试若干次（第 n 次失败后等待 n*backoff），全部失败则写入通知日志转异步重试
// 返回值只用于日志，触发方不需要处理
func (c *Client) NotifyMerchant(ctx context.Context, o *ordermodel.Order) error {
	entry := logger.L.WithFields(logrus.Fields{"orderId": o.OrderID, "mid": o.MID})

	var lastErr error
	err := utils.DoWithRetry(ctx, c.attempts, utils.LinearBackoff(c.backoff), func(attempt int) error {
		lastErr = c.SendOnce(ctx, o)
		if lastErr != nil {
			entry.Warnf("[NOTIFY] 第 %d/%d 次通知失败: %v", attempt, c.attempts, lastErr)
		}
		return lastErr
	})
	if err == nil {
		entry.Info("[NOTIFY] ✅ 商户通知成功")
		return nil
	}
	if lastErr == nil {
		lastErr = err
	}

	// 落库不能被已取消的 ctx 拦住
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if recErr := c.recorder.RecordFailure(recCtx, o, lastErr.Error(), c.attempts); recErr != nil {
		entry.Errorf("[NOTIFY] ❌ 写入通知日志失败: %v", recErr)
		if c.alerter != nil {
			c.alerter.Alert("通知日志写入失败", map[string]string{
				"订单号": o.OrderID,
				"错误":  recErr.Error(),
			})
		}
		return constant.WrapError(constant.CodeDatabaseError, recErr)
	}
	entry.Warnf("[NOTIFY] 同步重试已用完，转入异步重试: %v", lastErr)
	return constant.WrapError(constant.CodeNotifyExhausted, lastErr)
}

// AsyncDispatcher 不依赖 MQ 时直接起 goroutine 通知
type AsyncDispatcher struct {
	client *Client
	wg     sync.WaitGroup
}

func NewAsyncDispatcher(client *Client) *AsyncDispatcher {
	return &AsyncDispatcher{client: client}
}

func (d *AsyncDispatcher) DispatchPaid(o *ordermodel.Order) {
	cp := *o
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.client.NotifyMerchant(context.Background(), &cp)
	}()
}

// Wait 关闭时等待进行中的通知
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}
