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
	"gorm.io/gorm/clause"
)

type NotifyLogDao struct {
	DB *gorm.DB
}

func NewNotifyLogDao() *NotifyLogDao {
	if dal.OrderDB == nil {
		log.Panic("[FATAL] dal.OrderDB is nil - database not initialized")
	}
	return &NotifyLogDao{DB: dal.OrderDB}
}

func NewNotifyLogDaoWithDB(db *gorm.DB) *NotifyLogDao {
	if db == nil {
		log.Panic("[FATAL] db cannot be nil")
	}
	return &NotifyLogDao{DB: db}
}

func (r *NotifyLogDao) checkDB() error {
	if r == nil {
		return errors.New("NotifyLogDao is nil")
	}
	if r.DB == nil {
		return errors.New("DB connection is nil")
	}
	return nil
}

// UpsertPending 记录同步重试失败：新行直接插入，已有行重新置为待重试，retry_count 只增不减
func (r *NotifyLogDao) UpsertPending(ctx context.Context, m *ordermodel.NotifyLog) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("upsert notify log failed: %w", err)
	}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status": ordermodel.NotifyPendingRetry,
			"retry_count": gorm.Expr("CASE WHEN retry_count > ? THEN retry_count ELSE ? END",
				m.RetryCount, m.RetryCount),
			"last_error":    m.LastError,
			"next_retry_at": m.NextRetryAt,
			"version":       gorm.Expr("version + 1"),
			"update_time":   time.Now(),
		}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("upsert notify log failed: %w", err)
	}
	return nil
}

// GetByOrderID 不存在返回 nil, nil
func (r *NotifyLogDao) GetByOrderID(ctx context.Context, orderID string) (*ordermodel.NotifyLog, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get notify log failed: %w", err)
	}
	var m ordermodel.NotifyLog
	err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notify log failed: %w", err)
	}
	return &m, nil
}

// ListDue 到期待重试的记录
func (r *NotifyLogDao) ListDue(ctx context.Context, now time.Time, limit int) ([]ordermodel.NotifyLog, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("list due notify logs failed: %w", err)
	}
	var list []ordermodel.NotifyLog
	err := r.DB.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", ordermodel.NotifyPendingRetry, now).
		Order("next_retry_at ASC").Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list due notify logs failed: %w", err)
	}
	return list, nil
}

// Claim 以 version 为条件认领一行并把 next_retry_at 推到租约结束，返回是否认领成功
// 认领后进程崩溃，租约到期后其他实例可以重新认领
func (r *NotifyLogDao) Claim(ctx context.Context, id uint64, version int64, leaseUntil time.Time) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, fmt.Errorf("claim notify log failed: %w", err)
	}
	res := r.DB.WithContext(ctx).Model(&ordermodel.NotifyLog{}).
		Where("id = ? AND version = ? AND status = ?", id, version, ordermodel.NotifyPendingRetry).
		Updates(map[string]interface{}{
			"version":       gorm.Expr("version + 1"),
			"next_retry_at": leaseUntil,
		})
	if res.Error != nil {
		return false, fmt.Errorf("claim notify log failed: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// UpdateResult 回写一次重试结果，条件是认领时拿到的 version
func (r *NotifyLogDao) UpdateResult(ctx context.Context, id uint64, claimedVersion int64, fields map[string]interface{}) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, fmt.Errorf("update notify log failed: %w", err)
	}
	fields["version"] = gorm.Expr("version + 1")
	res := r.DB.WithContext(ctx).Model(&ordermodel.NotifyLog{}).
		Where("id = ? AND version = ?", id, claimedVersion).
		Updates(fields)
	if res.Error != nil {
		return false, fmt.Errorf("update notify log failed: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkSucceededByOrder 手动补发成功后把该订单的记录置为成功，没有记录时什么也不做
func (r *NotifyLogDao) MarkSucceededByOrder(ctx context.Context, orderID string) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("mark notify log succeeded failed: %w", err)
	}
	err := r.DB.WithContext(ctx).Model(&ordermodel.NotifyLog{}).
		Where("order_id = ? AND status <> ?", orderID, ordermodel.NotifySucceeded).
		Updates(map[string]interface{}{
			"status":  ordermodel.NotifySucceeded,
			"version": gorm.Expr("version + 1"),
		}).Error
	if err != nil {
		return fmt.Errorf("mark notify log succeeded failed: %w", err)
	}
	return nil
}

// NotifyLogQuery 列表查询条件，Status 为 nil 时不过滤
type NotifyLogQuery struct {
	MID      uint64
	Status   *int8
	Page     int
	PageSize int
}

func (r *NotifyLogDao) List(ctx context.Context, q NotifyLogQuery) ([]ordermodel.NotifyLog, int64, error) {
	if err := r.checkDB(); err != nil {
		return nil, 0, fmt.Errorf("list notify logs failed: %w", err)
	}
	db := r.DB.WithContext(ctx).Model(&ordermodel.NotifyLog{})
	if q.MID > 0 {
		db = db.Where("m_id = ?", q.MID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notify logs failed: %w", err)
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 || q.PageSize > 200 {
		q.PageSize = 20
	}
	var list []ordermodel.NotifyLog
	err := db.Order("id DESC").Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list notify logs failed: %w", err)
	}
	return list, total, nil
}
