package service

import (
	"context"
	"errors"
	"time"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/dao"
	"mpay-order-api/internal/logger"
	ordermodel "mpay-order-api/internal/model/order"
	rediskey "mpay-order-api/internal/types/redis-key"
	"mpay-order-api/internal/utils"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MatchCommand 监控端上报的一笔到账
type MatchCommand struct {
	MID           uint64
	AID           uint64
	PayType       string
	Amount        decimal.Decimal
	PlatformOrder string
}

// MatchStore OrderDao 实现
type MatchStore interface {
	GetByPlatformOrder(ctx context.Context, mid uint64, platformOrder string) (*ordermodel.Order, error)
	ListPendingForMatch(ctx context.Context, mid, aid uint64, payType string) ([]ordermodel.Order, error)
	MarkPaid(ctx context.Context, orderID string, payTime time.Time, platformOrder string) (int64, error)
	GetByOrderID(ctx context.Context, orderID string) (*ordermodel.Order, error)
}

// ObservationGuard 同一流水号短时间内重复上报的拦截
type ObservationGuard interface {
	// Acquire 返回 false 表示该流水号正在或已经处理过
	Acquire(ctx context.Context, platformOrder string) (bool, error)
	Release(ctx context.Context, platformOrder string)
}

type OrderMatchService struct {
	store MatchStore
	guard ObservationGuard
	hooks paidHooks
	now   func() time.Time
}

func NewOrderMatchService(store MatchStore, guard ObservationGuard, events OrderEventPublisher, dispatcher PaidDispatcher, pusher PaymentPusher) *OrderMatchService {
	return &OrderMatchService{
		store: store,
		guard: guard,
		hooks: paidHooks{events: events, dispatcher: dispatcher, pusher: pusher},
		now:   time.Now,
	}
}

func NewDefaultOrderMatchService(rdb *redis.Client, ttl time.Duration, events OrderEventPublisher, dispatcher PaidDispatcher, pusher PaymentPusher) *OrderMatchService {
	var guard ObservationGuard
	if rdb != nil {
		guard = NewRedisObservationGuard(rdb, ttl)
	}
	return NewOrderMatchService(dao.NewOrderDao(), guard, events, dispatcher, pusher)
}

// MatchPayment 把一笔到账匹配到唯一的待支付订单
// 金额精确比较，多笔相同金额时先创建的先匹配；没有可匹配订单返回 CodeOrderNotFound，由监控端决定是否重报
func (s *OrderMatchService) MatchPayment(ctx context.Context, cmd MatchCommand) (*ordermodel.Order, error) {
	if cmd.MID == 0 || cmd.AID == 0 || cmd.PayType == "" {
		return nil, constant.NewError(constant.CodeMissingParams)
	}
	// 到账金额不做舍入，超过两位小数的观测值不可能对应任何订单
	if !cmd.Amount.IsPositive() || !utils.IsCentPrecise(cmd.Amount) {
		return nil, constant.NewErrorf(constant.CodeOrderAmountInvalid, "到账金额无效: %s", cmd.Amount.String())
	}

	entry := logger.L.WithFields(logrus.Fields{
		"mid": cmd.MID, "aid": cmd.AID, "type": cmd.PayType,
		"price": cmd.Amount.StringFixed(2), "platformOrder": cmd.PlatformOrder,
	})

	if cmd.PlatformOrder != "" {
		settled, err := s.store.GetByPlatformOrder(ctx, cmd.MID, cmd.PlatformOrder)
		if err != nil {
			return nil, constant.WrapError(constant.CodeDatabaseError, err)
		}
		if settled != nil {
			entry.Infof("[MATCH] 流水号已结算过订单 %s，忽略重复上报", settled.OrderID)
			return settled, nil
		}
		if s.guard != nil {
			ok, err := s.guard.Acquire(ctx, cmd.PlatformOrder)
			if err != nil {
				entry.Warnf("[MATCH] 去重标记写入失败，继续匹配: %v", err)
			} else if !ok {
				return nil, constant.NewErrorf(constant.CodeNotifyRepeat, "流水号 %s 正在处理", cmd.PlatformOrder)
			}
		}
	}

	o, err := s.match(ctx, cmd)
	if err != nil {
		if s.guard != nil && cmd.PlatformOrder != "" {
			s.guard.Release(ctx, cmd.PlatformOrder)
		}
		if constant.IsCode(err, constant.CodeOrderNotFound) {
			entry.Warn("[MATCH] ⚠️ 没有匹配的待支付订单，需人工核对")
		} else {
			entry.Errorf("[MATCH] ❌ 匹配失败: %v", err)
		}
		return nil, err
	}

	entry.WithField("orderId", o.OrderID).Info("[MATCH] ✅ 订单已支付")
	s.hooks.afterPaid(ctx, o)
	return o, nil
}

func (s *OrderMatchService) match(ctx context.Context, cmd MatchCommand) (*ordermodel.Order, error) {
	list, err := s.store.ListPendingForMatch(ctx, cmd.MID, cmd.AID, cmd.PayType)
	if err != nil {
		return nil, constant.WrapError(constant.CodeDatabaseError, err)
	}

	// 已按 create_time, id 排好序
	for i := range list {
		cand := &list[i]
		if !utils.SameMoney(cand.ReallyPrice, cmd.Amount) {
			continue
		}
		payTime := s.now()
		n, err := s.store.MarkPaid(ctx, cand.OrderID, payTime, cmd.PlatformOrder)
		if err != nil {
			return nil, constant.WrapError(constant.CodeDatabaseError, err)
		}
		if n == 0 {
			// 被过期任务或另一次匹配抢先处理
			continue
		}
		cand.Status = ordermodel.StatusPaid
		cand.PayTime = &payTime
		cand.PlatformOrder = cmd.PlatformOrder
		cand.PriceSlot = nil
		return cand, nil
	}
	return nil, constant.NewErrorf(constant.CodeOrderNotFound, "没有金额为 %s 的待支付订单", cmd.Amount.StringFixed(2))
}

// RedisObservationGuard SetNX 短期标记，标记失败时降级为只依赖数据库条件更新
type RedisObservationGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisObservationGuard(rdb *redis.Client, ttl time.Duration) *RedisObservationGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisObservationGuard{rdb: rdb, ttl: ttl}
}

func (g *RedisObservationGuard) Acquire(ctx context.Context, platformOrder string) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, rediskey.RecordKey(platformOrder), time.Now().Unix(), g.ttl).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return ok, nil
}

func (g *RedisObservationGuard) Release(ctx context.Context, platformOrder string) {
	if err := g.rdb.Del(ctx, rediskey.RecordKey(platformOrder)).Err(); err != nil {
		logger.L.Warnf("[MATCH] 清除去重标记失败 %s: %v", platformOrder, err)
	}
}
