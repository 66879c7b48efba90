package dal

import (
	"fmt"

	mainmodel "mpay-order-api/internal/model/main"
	ordermodel "mpay-order-api/internal/model/order"

	"gorm.io/gorm"
)

// AutoMigrate 建表，生产环境一般关闭，由 DBA 执行 DDL
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&mainmodel.Merchant{},
		&mainmodel.PayAccount{},
		&mainmodel.PayChannel{},
		&mainmodel.SysConfig{},
		&ordermodel.Order{},
		&ordermodel.NotifyLog{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
