package realtime

import (
	"context"
	"encoding/json"

	"mpay-order-api/internal/logger"
)

const (
	TypePaymentSuccess = "PAYMENT_SUCCESS"
	TypePaymentFailed  = "PAYMENT_FAILED"
)

// Message 推给浏览器的帧
type Message struct {
	Type    string `json:"type"`
	OrderID string `json:"orderId"`
	TradeNo string `json:"tradeNo,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Pusher 尽力而为的浏览器推送，商户通知才是权威结果
type Pusher struct {
	reg   *Registry
	queue chan Message
}

func NewPusher(reg *Registry, queueSize int) *Pusher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Pusher{reg: reg, queue: make(chan Message, queueSize)}
}

func (p *Pusher) Registry() *Registry { return p.reg }

// SendPaymentSuccess 没有订阅连接时返回 false，不算错误
func (p *Pusher) SendPaymentSuccess(orderID, tradeNo string) bool {
	return p.send(Message{Type: TypePaymentSuccess, OrderID: orderID, TradeNo: tradeNo})
}

func (p *Pusher) SendPaymentFailed(orderID, reason string) bool {
	return p.send(Message{Type: TypePaymentFailed, OrderID: orderID, Reason: reason})
}

func (p *Pusher) HasActiveConnection(orderID string) bool {
	_, ok := p.reg.Lookup(orderID)
	return ok
}

func (p *Pusher) ActiveConnectionCount() int { return p.reg.Len() }

func (p *Pusher) send(m Message) bool {
	s, ok := p.reg.Lookup(m.OrderID)
	if !ok {
		return false
	}
	b, _ := json.Marshal(m)
	if err := s.Send(b); err != nil {
		logger.L.Warnf("[WS] 推送失败，移除连接 orderId=%s: %v", m.OrderID, err)
		p.reg.Remove(m.OrderID, s)
		_ = s.Close()
		return false
	}
	return true
}

// PushSuccess 入队后立即返回，不阻塞调用方事务；队列满直接丢弃
func (p *Pusher) PushSuccess(orderID, tradeNo string) {
	p.enqueue(Message{Type: TypePaymentSuccess, OrderID: orderID, TradeNo: tradeNo})
}

func (p *Pusher) PushFailed(orderID, reason string) {
	p.enqueue(Message{Type: TypePaymentFailed, OrderID: orderID, Reason: reason})
}

func (p *Pusher) enqueue(m Message) {
	select {
	case p.queue <- m:
	default:
		logger.L.Warnf("[WS] 推送队列已满，丢弃 type=%s orderId=%s", m.Type, m.OrderID)
	}
}

// Run 消费推送队列直到 ctx 取消
func (p *Pusher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-p.queue:
			if !p.send(m) {
				logger.L.Debugf("[WS] 无在线连接 type=%s orderId=%s", m.Type, m.OrderID)
			}
		}
	}
}
