package notify

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"mpay-order-api/internal/constant"
	ordermodel "mpay-order-api/internal/model/order"

	"github.com/go-resty/resty/v2"
)

// Sender 通知后端，目前只有 HTTP
type Sender interface {
	Send(ctx context.Context, o *ordermodel.Order, payload map[string]string) error
}

// HTTPSender 表单 POST 到商户 notify_url，2xx 视为成功
type HTTPSender struct {
	client *resty.Client
}

func NewHTTPSender(timeout time.Duration) *HTTPSender {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "mpay-notify/1.0")
	return &HTTPSender{client: c}
}

func (s *HTTPSender) Send(ctx context.Context, o *ordermodel.Order, payload map[string]string) error {
	u, err := url.ParseRequestURI(o.NotifyURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		// 地址错误也按发送失败处理，商户改好地址后还能重试成功
		return constant.NewErrorf(constant.CodeNotifyURLInvalid, "通知地址无效: %q", o.NotifyURL)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(payload).
		Post(o.NotifyURL)
	if err != nil {
		if isTimeout(err) {
			return constant.WrapError(constant.CodeNotifyTimeout, err)
		}
		return constant.WrapError(constant.CodeNotifyFailed, err)
	}
	if !resp.IsSuccess() {
		return constant.NewErrorf(constant.CodeNotifyFailed, "商户返回 HTTP %d", resp.StatusCode())
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
