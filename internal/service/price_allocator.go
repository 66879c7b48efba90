package service

import (
	"context"
	"fmt"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/utils"

	"github.com/shopspring/decimal"
)

// PriceAllocator 在同一账号/通道/支付方式的待支付订单中找一个没被占用的金额
type PriceAllocator interface {
	Allocate(ctx context.Context, target decimal.Decimal, aid, cid uint64, payType string) (decimal.Decimal, error)
}

// PendingSlotReader OrderDao 实现
type PendingSlotReader interface {
	ListPendingSlots(ctx context.Context, aid, cid uint64, payType string) ([]int64, error)
}

// IncrementalPriceAllocator 从目标金额开始每次加 0.01 直到不冲突
// 只是探测不做预留，并发冲突由 uk_pending_price 在落库时兜底
type IncrementalPriceAllocator struct {
	slots PendingSlotReader
}

func NewIncrementalPriceAllocator(slots PendingSlotReader) *IncrementalPriceAllocator {
	return &IncrementalPriceAllocator{slots: slots}
}

func (a *IncrementalPriceAllocator) Allocate(ctx context.Context, target decimal.Decimal, aid, cid uint64, payType string) (decimal.Decimal, error) {
	cents := utils.ToCents(target)
	if cents <= 0 {
		return decimal.Zero, constant.NewErrorf(constant.CodeOrderAmountInvalid, "金额必须大于0: %s", target.String())
	}

	used, err := a.slots.ListPendingSlots(ctx, aid, cid, payType)
	if err != nil {
		return decimal.Zero, fmt.Errorf("allocate price: %w", err)
	}
	taken := make(map[int64]struct{}, len(used))
	for _, s := range used {
		taken[s] = struct{}{}
	}
	for {
		if _, ok := taken[cents]; !ok {
			return utils.FromCents(cents), nil
		}
		cents++
	}
}
