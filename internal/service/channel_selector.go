package service

import (
	"context"
	"time"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/logger"
	mainmodel "mpay-order-api/internal/model/main"
	rediskey "mpay-order-api/internal/types/redis-key"
	"mpay-order-api/internal/utils"

	"github.com/go-redis/redis/v8"
)

const (
	PolicyFirst      = "first"
	PolicyRoundRobin = "round_robin"
)

// ChannelSelection 选中的收款账号与通道
type ChannelSelection struct {
	AID     uint64
	CID     uint64
	Pattern int
}

// ChannelStore MainDao 实现
type ChannelStore interface {
	ListEnabledAccounts(ctx context.Context, mid uint64) ([]mainmodel.PayAccount, error)
	ListEnabledChannels(ctx context.Context, accountIDs []uint64, payType string) ([]mainmodel.PayChannel, error)
	TouchChannel(ctx context.Context, cid uint64, t time.Time) error
}

// ChannelHealth health.Manager 实现
type ChannelHealth interface {
	IsDisabled(ctx context.Context, cid uint64) bool
}

type ChannelSelector struct {
	store  ChannelStore
	policy string
	rdb    *redis.Client // round_robin 状态，可为空
	health ChannelHealth
}

func NewChannelSelector(store ChannelStore, policy string, rdb *redis.Client) *ChannelSelector {
	if policy != PolicyRoundRobin {
		policy = PolicyFirst
	}
	return &ChannelSelector{store: store, policy: policy, rdb: rdb}
}

// UseHealth 跳过已熔断的通道
func (s *ChannelSelector) UseHealth(h ChannelHealth) *ChannelSelector {
	s.health = h
	return s
}

// Select 没有启用的账号或通道时返回 CodeChannelUnavailable
func (s *ChannelSelector) Select(ctx context.Context, mid uint64, payType string) (*ChannelSelection, error) {
	accounts, err := s.store.ListEnabledAccounts(ctx, mid)
	if err != nil {
		return nil, constant.WrapError(constant.CodeDatabaseError, err)
	}
	if len(accounts) == 0 {
		return nil, constant.NewErrorf(constant.CodeChannelUnavailable, "商户 %d 没有启用的收款账号", mid)
	}
	ids := make([]uint64, 0, len(accounts))
	byID := make(map[uint64]mainmodel.PayAccount, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
		byID[a.ID] = a
	}

	channels, err := s.store.ListEnabledChannels(ctx, ids, payType)
	if err != nil {
		return nil, constant.WrapError(constant.CodeDatabaseError, err)
	}
	if len(channels) == 0 {
		return nil, constant.NewErrorf(constant.CodeChannelUnavailable, "商户 %d 没有支持 %s 的收款通道", mid, payType)
	}

	channels = s.healthy(ctx, mid, channels)
	picked := s.pick(ctx, mid, payType, accounts, channels)
	if err := s.store.TouchChannel(ctx, picked.ID, time.Now()); err != nil {
		logger.L.Warnf("[CHANNEL] 更新通道使用时间失败 cid=%d: %v", picked.ID, err)
	}
	return &ChannelSelection{AID: picked.AccountID, CID: picked.ID, Pattern: byID[picked.AccountID].Pattern}, nil
}

// healthy 全部熔断时保留原列表，不因统计误判拒单
func (s *ChannelSelector) healthy(ctx context.Context, mid uint64, channels []mainmodel.PayChannel) []mainmodel.PayChannel {
	if s.health == nil {
		return channels
	}
	out := make([]mainmodel.PayChannel, 0, len(channels))
	for _, c := range channels {
		if !s.health.IsDisabled(ctx, c.ID) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		logger.L.Warnf("[CHANNEL] 商户 %d 的通道全部熔断，忽略熔断状态", mid)
		return channels
	}
	return out
}

func (s *ChannelSelector) pick(ctx context.Context, mid uint64, payType string, accounts []mainmodel.PayAccount, channels []mainmodel.PayChannel) mainmodel.PayChannel {
	if s.policy == PolicyRoundRobin && len(channels) > 1 {
		weights := make(map[uint64]int, len(channels))
		for _, c := range channels {
			w := c.Weight
			if w <= 0 {
				w = 1
			}
			weights[c.ID] = w
		}
		id := utils.SmoothWeightedRR(ctx, s.rdb, rediskey.ChannelRRKey(mid, payType), weights)
		for _, c := range channels {
			if c.ID == id {
				return c
			}
		}
	}

	// 第一个有可用通道的账号，取它的第一个通道
	for _, a := range accounts {
		for _, c := range channels {
			if c.AccountID == a.ID {
				return c
			}
		}
	}
	return channels[0]
}
