package heartbeat

import (
	"context"
	"fmt"
	"time"

	ordermodel "mpay-order-api/internal/model/order"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cast"
)

// Event 订单进入待支付或状态变化时写入流的快照，监控端据此知道该盯哪个账号的哪个金额
type Event struct {
	OrderID   string    `json:"orderId"`
	MID       uint64    `json:"merchantId"`
	AID       uint64    `json:"accountId"`
	CID       uint64    `json:"channelId"`
	PayType   string    `json:"type"`
	Price     string    `json:"price"`
	Pattern   int       `json:"pattern"`
	State     int8      `json:"state"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Entry 带流内偏移量的事件
type Entry struct {
	ID    string `json:"id"`
	Event Event  `json:"event"`
}

// StreamClient *redis.Client 已实现
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XRange(ctx context.Context, stream, start, stop string) *redis.XMessageSliceCmd
	XRangeN(ctx context.Context, stream, start, stop string, count int64) *redis.XMessageSliceCmd
}

// Stream 只追加的心跳流，至少一次，同一生产者内保持追加顺序
type Stream struct {
	rdb    StreamClient
	key    string
	maxLen int64
	now    func() time.Time
}

func NewStream(rdb StreamClient, key string, maxLen int64) *Stream {
	return &Stream{rdb: rdb, key: key, maxLen: maxLen, now: time.Now}
}

func FromOrder(o *ordermodel.Order) Event {
	return Event{
		OrderID:   o.OrderID,
		MID:       o.MID,
		AID:       o.AID,
		CID:       o.CID,
		PayType:   o.PayType,
		Price:     o.ReallyPrice.StringFixed(2),
		Pattern:   o.Pattern,
		State:     o.Status,
		ExpiresAt: o.ExpireTime,
	}
}

// Publish 追加一条事件，超过 maxLen 时近似裁剪旧数据
func (s *Stream) Publish(ctx context.Context, o *ordermodel.Order) error {
	e := FromOrder(o)
	args := &redis.XAddArgs{
		Stream: s.key,
		Values: map[string]interface{}{
			"orderId":   e.OrderID,
			"pid":       e.MID,
			"aid":       e.AID,
			"cid":       e.CID,
			"type":      e.PayType,
			"price":     e.Price,
			"pattern":   e.Pattern,
			"state":     e.State,
			"expiresAt": e.ExpiresAt.UnixMilli(),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.key, err)
	}
	return nil
}

// FetchActive 从头读取，按订单号合并（后写覆盖先写），只保留仍待支付且未过期的；mid 为 0 不过滤
func (s *Stream) FetchActive(ctx context.Context, mid uint64) ([]Event, error) {
	msgs, err := s.rdb.XRange(ctx, s.key, "-", "+").Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("xrange %s: %w", s.key, err)
	}

	latest := make(map[string]Event, len(msgs))
	order := make([]string, 0, len(msgs))
	for _, m := range msgs {
		e := parse(m.Values)
		if e.OrderID == "" {
			continue
		}
		if _, seen := latest[e.OrderID]; !seen {
			order = append(order, e.OrderID)
		}
		latest[e.OrderID] = e
	}

	now := s.now()
	active := make([]Event, 0, len(order))
	for _, id := range order {
		e := latest[id]
		if e.State != ordermodel.StatusPending || !e.ExpiresAt.After(now) {
			continue
		}
		if mid != 0 && e.MID != mid {
			continue
		}
		active = append(active, e)
	}
	return active, nil
}

// Read 从偏移量之后读取原始事件，from 为空从头开始；返回下一次读取用的偏移量
func (s *Stream) Read(ctx context.Context, from string, count int64) ([]Entry, string, error) {
	start := "-"
	if from != "" {
		start = "(" + from
	}
	if count <= 0 {
		count = 100
	}
	msgs, err := s.rdb.XRangeN(ctx, s.key, start, "+", count).Result()
	if err != nil && err != redis.Nil {
		return nil, from, fmt.Errorf("xrange %s: %w", s.key, err)
	}
	entries := make([]Entry, 0, len(msgs))
	next := from
	for _, m := range msgs {
		entries = append(entries, Entry{ID: m.ID, Event: parse(m.Values)})
		next = m.ID
	}
	return entries, next, nil
}

func parse(v map[string]interface{}) Event {
	return Event{
		OrderID:   cast.ToString(v["orderId"]),
		MID:       cast.ToUint64(v["pid"]),
		AID:       cast.ToUint64(v["aid"]),
		CID:       cast.ToUint64(v["cid"]),
		PayType:   cast.ToString(v["type"]),
		Price:     cast.ToString(v["price"]),
		Pattern:   cast.ToInt(v["pattern"]),
		State:     cast.ToInt8(v["state"]),
		ExpiresAt: time.UnixMilli(cast.ToInt64(v["expiresAt"])),
	}
}
