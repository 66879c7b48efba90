package dao

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mpay-order-api/internal/dal"
	mainmodel "mpay-order-api/internal/model/main"

	"gorm.io/gorm"
)

// MainDao 商户、收款账号、收款通道，只读为主
type MainDao struct {
	DB *gorm.DB
}

func NewMainDao() *MainDao {
	if dal.OrderDB == nil {
		log.Panic("[FATAL] dal.OrderDB is nil - database not initialized")
	}
	return &MainDao{DB: dal.OrderDB}
}

func NewMainDaoWithDB(db *gorm.DB) *MainDao {
	if db == nil {
		log.Panic("[FATAL] db cannot be nil")
	}
	return &MainDao{DB: db}
}

func (r *MainDao) checkDB() error {
	if r == nil {
		return errors.New("MainDao is nil")
	}
	if r.DB == nil {
		return errors.New("DB connection is nil")
	}
	return nil
}

// GetMerchant 不存在返回 nil, nil
func (r *MainDao) GetMerchant(ctx context.Context, mid uint64) (*mainmodel.Merchant, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get merchant failed: %w", err)
	}
	var m mainmodel.Merchant
	err := r.DB.WithContext(ctx).Where("id = ?", mid).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get merchant failed: %w", err)
	}
	return &m, nil
}

// ListEnabledAccounts 商户下启用的收款账号，按 id 升序
func (r *MainDao) ListEnabledAccounts(ctx context.Context, mid uint64) ([]mainmodel.PayAccount, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("list accounts failed: %w", err)
	}
	var list []mainmodel.PayAccount
	err := r.DB.WithContext(ctx).
		Where("pid = ? AND state = ?", mid, mainmodel.StateEnabled).
		Order("id ASC").Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list accounts failed: %w", err)
	}
	return list, nil
}

// ListEnabledChannels 账号下启用且支持该支付方式的通道（type 为空表示不限）
func (r *MainDao) ListEnabledChannels(ctx context.Context, accountIDs []uint64, payType string) ([]mainmodel.PayChannel, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("list channels failed: %w", err)
	}
	var list []mainmodel.PayChannel
	if len(accountIDs) == 0 {
		return list, nil
	}
	err := r.DB.WithContext(ctx).
		Where("account_id IN ? AND state = ? AND (type = ? OR type = '' OR type IS NULL)",
			accountIDs, mainmodel.StateEnabled, payType).
		Order("account_id ASC").Order("id ASC").Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list channels failed: %w", err)
	}
	return list, nil
}

// TouchChannel 记录通道最近一次被选中的时间
func (r *MainDao) TouchChannel(ctx context.Context, cid uint64, t time.Time) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("touch channel failed: %w", err)
	}
	err := r.DB.WithContext(ctx).Model(&mainmodel.PayChannel{}).
		Where("id = ?", cid).Update("last_time", t).Error
	if err != nil {
		return fmt.Errorf("touch channel failed: %w", err)
	}
	return nil
}
