package service

import (
	"context"
	"time"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/dto"
	ordermodel "mpay-order-api/internal/model/order"

	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

// OrderReader OrderDao 实现
type OrderReader interface {
	GetByOrderID(ctx context.Context, orderID string) (*ordermodel.Order, error)
}

// CashierService 收银台查询与轮询
type CashierService struct {
	orders OrderReader
	now    func() time.Time
}

func NewCashierService(orders OrderReader) *CashierService {
	return &CashierService{orders: orders, now: time.Now}
}

func (s *CashierService) load(ctx context.Context, orderID string) (*ordermodel.Order, error) {
	o, err := s.orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, constant.WrapError(constant.CodeDatabaseError, err)
	}
	if o == nil {
		return nil, constant.NewError(constant.CodeOrderNotFound)
	}
	return o, nil
}

func (s *CashierService) GetOrder(ctx context.Context, orderID string) (*dto.OrderView, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToOrderView(o)
}

// State 剩余时间按 expireTime 计算，已支付或已关闭为 0
func (s *CashierService) State(ctx context.Context, orderID string) (*dto.OrderStateView, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	v := &dto.OrderStateView{
		OrderID:   o.OrderID,
		Status:    o.Status,
		State:     ordermodel.StatusText(o.Status),
		ReturnURL: o.ReturnURL,
	}
	if o.IsPending() {
		if left := o.ExpireTime.Sub(s.now()); left > 0 {
			v.ExpireIn = int64(left / time.Second)
		}
	}
	return v, nil
}

var moneyConverter = copier.TypeConverter{
	SrcType: decimal.Decimal{},
	DstType: copier.String,
	Fn: func(src interface{}) (interface{}, error) {
		return src.(decimal.Decimal).StringFixed(2), nil
	},
}

// ToOrderView 金额统一两位小数
func ToOrderView(o *ordermodel.Order) (*dto.OrderView, error) {
	var v dto.OrderView
	if err := copier.CopyWithOption(&v, o, copier.Option{Converters: []copier.TypeConverter{moneyConverter}}); err != nil {
		return nil, constant.WrapError(constant.CodeSystemError, err)
	}
	return &v, nil
}
