package dao

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mpay-order-api/internal/dal"
	ordermodel "mpay-order-api/internal/model/order"

	"gorm.io/gorm"
)

type OrderDao struct {
	DB *gorm.DB
}

// 工厂方法：默认使用 dal.OrderDB
func NewOrderDao() *OrderDao {
	if dal.OrderDB == nil {
		log.Panic("[FATAL] dal.OrderDB is nil - database not initialized")
	}
	return &OrderDao{DB: dal.OrderDB}
}

// 支持传入自定义 DB（比如 txDB、测试用 sqlite）
func NewOrderDaoWithDB(db *gorm.DB) *OrderDao {
	if db == nil {
		log.Panic("[FATAL] db cannot be nil")
	}
	return &OrderDao{DB: db}
}

// 安全检查方法
func (r *OrderDao) checkDB() error {
	if r == nil {
		return errors.New("OrderDao is nil")
	}
	if r.DB == nil {
		return errors.New("DB connection is nil")
	}
	return nil
}

// Insert 插入订单，唯一键冲突原样返回 gorm.ErrDuplicatedKey 由调用方判断
func (r *OrderDao) Insert(ctx context.Context, o *ordermodel.Order) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("insert order failed: %w", err)
	}
	if err := r.DB.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("insert order failed: %w", err)
	}
	return nil
}

// GetByOrderID 根据平台订单号获取订单，不存在返回 nil, nil
func (r *OrderDao) GetByOrderID(ctx context.Context, orderID string) (*ordermodel.Order, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get by order id failed: %w", err)
	}
	var m ordermodel.Order
	err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order failed: %w", err)
	}
	return &m, nil
}

// GetByOutTradeNo 根据商户号 + 商户订单号获取订单
func (r *OrderDao) GetByOutTradeNo(ctx context.Context, mid uint64, outTradeNo string) (*ordermodel.Order, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get by out trade no failed: %w", err)
	}
	var m ordermodel.Order
	err := r.DB.WithContext(ctx).Where("m_id = ? AND out_trade_no = ?", mid, outTradeNo).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order failed: %w", err)
	}
	return &m, nil
}

// GetByPlatformOrder 查找已被该流水号结算过的订单
func (r *OrderDao) GetByPlatformOrder(ctx context.Context, mid uint64, platformOrder string) (*ordermodel.Order, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get by platform order failed: %w", err)
	}
	var m ordermodel.Order
	err := r.DB.WithContext(ctx).
		Where("m_id = ? AND platform_order = ? AND status = ?", mid, platformOrder, ordermodel.StatusPaid).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order failed: %w", err)
	}
	return &m, nil
}

// ListPendingSlots 同一账号/通道/支付方式下待支付订单已占用的金额（分）
func (r *OrderDao) ListPendingSlots(ctx context.Context, aid, cid uint64, payType string) ([]int64, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("list pending slots failed: %w", err)
	}
	var slots []int64
	err := r.DB.WithContext(ctx).Model(&ordermodel.Order{}).
		Where("aid = ? AND cid = ? AND pay_type = ? AND status = ? AND price_slot IS NOT NULL",
			aid, cid, payType, ordermodel.StatusPending).
		Pluck("price_slot", &slots).Error
	if err != nil {
		return nil, fmt.Errorf("list pending slots failed: %w", err)
	}
	return slots, nil
}

// ListPendingForMatch 匹配候选：先创建的排前面，同一时刻按自增 id
func (r *OrderDao) ListPendingForMatch(ctx context.Context, mid, aid uint64, payType string) ([]ordermodel.Order, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("list pending for match failed: %w", err)
	}
	var list []ordermodel.Order
	err := r.DB.WithContext(ctx).
		Where("m_id = ? AND aid = ? AND pay_type = ? AND status = ?", mid, aid, payType, ordermodel.StatusPending).
		Order("create_time ASC").Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list pending for match failed: %w", err)
	}
	return list, nil
}

// MarkPaid 待支付 -> 已支付，返回影响行数；0 表示订单已被其他流程处理
func (r *OrderDao) MarkPaid(ctx context.Context, orderID string, payTime time.Time, platformOrder string) (int64, error) {
	if err := r.checkDB(); err != nil {
		return 0, fmt.Errorf("mark paid failed: %w", err)
	}
	res := r.DB.WithContext(ctx).Model(&ordermodel.Order{}).
		Where("order_id = ? AND status = ?", orderID, ordermodel.StatusPending).
		Updates(map[string]interface{}{
			"status":         ordermodel.StatusPaid,
			"pay_time":       payTime,
			"platform_order": platformOrder,
			"price_slot":     gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("mark paid failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListExpiredPendingIDs 创建时间早于 before 的待支付订单号
func (r *OrderDao) ListExpiredPendingIDs(ctx context.Context, before time.Time, limit int) ([]string, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("list expired failed: %w", err)
	}
	var ids []string
	err := r.DB.WithContext(ctx).Model(&ordermodel.Order{}).
		Where("status = ? AND create_time < ?", ordermodel.StatusPending, before).
		Order("id ASC").Limit(limit).
		Pluck("order_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list expired failed: %w", err)
	}
	return ids, nil
}

// CloseExpired 批量关闭，条件里再次限定待支付和创建时间，已被匹配的订单不会被关掉
func (r *OrderDao) CloseExpired(ctx context.Context, orderIDs []string, before, closeTime time.Time) (int64, error) {
	if err := r.checkDB(); err != nil {
		return 0, fmt.Errorf("close expired failed: %w", err)
	}
	if len(orderIDs) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Model(&ordermodel.Order{}).
		Where("order_id IN ? AND status = ? AND create_time < ?", orderIDs, ordermodel.StatusPending, before).
		Updates(map[string]interface{}{
			"status":     ordermodel.StatusClosed,
			"close_time": closeTime,
			"price_slot": gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("close expired failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListByOrderIDs 按订单号批量查询
func (r *OrderDao) ListByOrderIDs(ctx context.Context, orderIDs []string) ([]ordermodel.Order, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("list by order ids failed: %w", err)
	}
	var list []ordermodel.Order
	if len(orderIDs) == 0 {
		return list, nil
	}
	if err := r.DB.WithContext(ctx).Where("order_id IN ?", orderIDs).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list by order ids failed: %w", err)
	}
	return list, nil
}
