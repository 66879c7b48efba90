package health

import (
	"context"
	"errors"
	"time"

	"mpay-order-api/internal/logger"
	ordermodel "mpay-order-api/internal/model/order"
	rediskey "mpay-order-api/internal/types/redis-key"

	"github.com/go-redis/redis/v8"
)

// KV *redis.Client 已实现
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Manager 按通道记录支付成功率，低于阈值时熔断一段时间
// 订单支付记一次成功，过期关闭记一次失败
type Manager struct {
	kv        KV
	strategy  SuccessRateStrategy
	threshold float64
	ttl       time.Duration
}

func NewManager(kv KV, strategy SuccessRateStrategy, threshold float64, ttl time.Duration) *Manager {
	if strategy == nil {
		strategy = &EWMAStrategy{Alpha: 0.1}
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Manager{kv: kv, strategy: strategy, threshold: threshold, ttl: ttl}
}

// Update 返回更新后的成功率
func (m *Manager) Update(ctx context.Context, cid uint64, success bool) (float64, error) {
	current, err := m.kv.Get(ctx, rateKey(cid)).Float64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return 0, err
		}
		current = 100
	}

	rate := m.strategy.Update(current, success)
	if rate < m.threshold {
		if err := m.kv.Set(ctx, disabledKey(cid), 1, m.ttl).Err(); err != nil {
			return rate, err
		}
		logger.L.Warnf("[CHANNEL-HEALTH] ⚠️ 通道熔断 cid=%d rate=%.2f threshold=%.2f", cid, rate, m.threshold)
	} else if success {
		_ = m.kv.Del(ctx, disabledKey(cid)).Err()
	}
	// 成功率本身不设过期，熔断标记到期后通道重新参与选择
	return rate, m.kv.Set(ctx, rateKey(cid), rate, 0).Err()
}

func (m *Manager) Rate(ctx context.Context, cid uint64) float64 {
	v, err := m.kv.Get(ctx, rateKey(cid)).Float64()
	if err != nil {
		return 100
	}
	return v
}

// IsDisabled redis 不可用时视为未熔断
func (m *Manager) IsDisabled(ctx context.Context, cid uint64) bool {
	v, err := m.kv.Get(ctx, disabledKey(cid)).Int()
	return err == nil && v == 1
}

// Observe 订单终态变化时调用，待支付状态忽略
func (m *Manager) Observe(ctx context.Context, o *ordermodel.Order) {
	if o == nil || o.CID == 0 {
		return
	}
	var success bool
	switch {
	case o.IsPaid():
		success = true
	case o.IsClosed():
		success = false
	default:
		return
	}
	if _, err := m.Update(ctx, o.CID, success); err != nil {
		logger.L.Warnf("[CHANNEL-HEALTH] 更新成功率失败 cid=%d: %v", o.CID, err)
	}
}

// Publisher 心跳流 Stream 已实现
type Publisher interface {
	Publish(ctx context.Context, o *ordermodel.Order) error
}

type observingPublisher struct {
	next Publisher
	m    *Manager
}

// Wrap 每条状态事件先交给 next，再记入通道成功率
func (m *Manager) Wrap(next Publisher) Publisher {
	return &observingPublisher{next: next, m: m}
}

func (p *observingPublisher) Publish(ctx context.Context, o *ordermodel.Order) error {
	err := p.next.Publish(ctx, o)
	p.m.Observe(ctx, o)
	return err
}

func rateKey(cid uint64) string { return rediskey.ChannelRateKey(cid) }

func disabledKey(cid uint64) string { return rediskey.ChannelDisabledKey(cid) }
