package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/dto"
	"mpay-order-api/internal/idgen"
	"mpay-order-api/internal/logger"
	ordermodel "mpay-order-api/internal/model/order"
	"mpay-order-api/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateStore OrderDao 实现
type CreateStore interface {
	GetByOutTradeNo(ctx context.Context, mid uint64, outTradeNo string) (*ordermodel.Order, error)
	Insert(ctx context.Context, o *ordermodel.Order) error
}

// ChannelPicker ChannelSelector 实现
type ChannelPicker interface {
	Select(ctx context.Context, mid uint64, payType string) (*ChannelSelection, error)
}

type CreateOptions struct {
	PayTimeout      time.Duration
	PersistAttempts int
	CashierURL      string
}

// PublicOrderService 商户下单
type PublicOrderService struct {
	store     CreateStore
	selector  ChannelPicker
	allocator PriceAllocator
	events    OrderEventPublisher
	opt       CreateOptions
	newID     func() string
	now       func() time.Time
}

func NewPublicOrderService(store CreateStore, selector ChannelPicker, allocator PriceAllocator, events OrderEventPublisher, opt CreateOptions) *PublicOrderService {
	if opt.PayTimeout <= 0 {
		opt.PayTimeout = 180 * time.Second
	}
	if opt.PersistAttempts <= 0 {
		opt.PersistAttempts = 3
	}
	return &PublicOrderService{
		store:     store,
		selector:  selector,
		allocator: allocator,
		events:    events,
		opt:       opt,
		newID:     idgen.NewOrderID,
		now:       time.Now,
	}
}

// CreateOrder 签名已由中间件校验
// 分配金额只是探测，落库撞上 uk_pending_price 时重新分配，最多 PersistAttempts 次
func (s *PublicOrderService) CreateOrder(ctx context.Context, req *dto.CreateOrderReq, clientIP string) (*dto.CreateOrderResp, error) {
	money, err := decimal.NewFromString(strings.TrimSpace(req.Money))
	if err != nil || utils.ToCents(money) <= 0 {
		return nil, constant.NewErrorf(constant.CodeOrderAmountInvalid, "金额无效: %s", req.Money)
	}
	money = utils.RoundMoney(money)

	exist, err := s.store.GetByOutTradeNo(ctx, req.PID, req.OutTradeNo)
	if err != nil {
		return nil, constant.WrapError(constant.CodeDatabaseError, err)
	}
	if exist != nil {
		return nil, constant.NewErrorf(constant.CodeOrderAlreadyExist, "商户订单号 %s 已存在", req.OutTradeNo)
	}

	sel, err := s.selector.Select(ctx, req.PID, req.Type)
	if err != nil {
		return nil, err
	}

	entry := logger.L.WithFields(logrus.Fields{
		"mid": req.PID, "outTradeNo": req.OutTradeNo, "aid": sel.AID, "cid": sel.CID,
	})

	if req.ClientIP != "" {
		clientIP = req.ClientIP
	}
	var o *ordermodel.Order
	for attempt := 1; attempt <= s.opt.PersistAttempts; attempt++ {
		price, err := s.allocator.Allocate(ctx, money, sel.AID, sel.CID, req.Type)
		if err != nil {
			if constant.IsCode(err, constant.CodeOrderAmountInvalid) {
				return nil, err
			}
			return nil, constant.WrapError(constant.CodeDatabaseError, err)
		}

		now := s.now()
		slot := utils.ToCents(price)
		o = &ordermodel.Order{
			OrderID:     s.newID(),
			MID:         req.PID,
			OutTradeNo:  req.OutTradeNo,
			PayType:     req.Type,
			Name:        req.Name,
			Money:       money,
			ReallyPrice: price,
			PriceSlot:   &slot,
			Status:      ordermodel.StatusPending,
			AID:         sel.AID,
			CID:         sel.CID,
			Pattern:     sel.Pattern,
			NotifyURL:   req.NotifyURL,
			ReturnURL:   req.ReturnURL,
			ClientIP:    clientIP,
			Device:      req.Device,
			Param:       req.Param,
			CreateTime:  now,
			ExpireTime:  now.Add(s.opt.PayTimeout),
		}

		err = s.store.Insert(ctx, o)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, constant.WrapError(constant.CodeDatabaseError, err)
		}

		// 唯一键冲突可能来自商户订单号，也可能来自金额
		dup, qerr := s.store.GetByOutTradeNo(ctx, req.PID, req.OutTradeNo)
		if qerr != nil {
			return nil, constant.WrapError(constant.CodeDatabaseError, qerr)
		}
		if dup != nil {
			return nil, constant.NewErrorf(constant.CodeOrderAlreadyExist, "商户订单号 %s 已存在", req.OutTradeNo)
		}
		entry.Warnf("[ORDER] 金额 %s 被并发订单占用，第 %d/%d 次重新分配", price.StringFixed(2), attempt, s.opt.PersistAttempts)
		o = nil
	}
	if o == nil {
		return nil, constant.WrapError(constant.CodeServiceUnavailable,
			fmt.Errorf("price allocation conflicted %d times", s.opt.PersistAttempts))
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, o); err != nil {
			entry.Warnf("[ORDER] 心跳事件发送失败 orderId=%s: %v", o.OrderID, err)
		}
	}
	entry.WithField("orderId", o.OrderID).Infof("[ORDER] ✅ 下单成功 money=%s really=%s", money.StringFixed(2), o.ReallyPrice.StringFixed(2))

	return &dto.CreateOrderResp{
		OrderID:     o.OrderID,
		OutTradeNo:  o.OutTradeNo,
		Type:        o.PayType,
		Money:       o.Money.StringFixed(2),
		ReallyPrice: o.ReallyPrice.StringFixed(2),
		PayURL:      strings.TrimRight(s.opt.CashierURL, "/") + "/" + o.OrderID,
		ExpireTime:  o.ExpireTime,
	}, nil
}
