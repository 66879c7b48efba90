package dal

import (
	"fmt"
	"log"
	"time"

	"mpay-order-api/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OrderDB 订单、通知日志、商户与收款账号共用一个库
var OrderDB *gorm.DB

func InitOrderDB() {
	db, err := OpenDB(config.C.Database)
	if err != nil {
		log.Fatalf("connect order db failed: %v", err)
	}
	OrderDB = db
}

// OpenDB 按 driver 打开数据库，TranslateError 让唯一键冲突统一成 gorm.ErrDuplicatedKey
func OpenDB(c config.DatabaseCfg) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.Driver {
	case "mysql", "":
		dsn := c.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
				c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
		}
		dialector = mysql.Open(dsn)
	case "postgres":
		dsn := c.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=Asia/Shanghai",
				c.Host, c.Port, c.Username, c.Password, c.Database)
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(c.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s failed: %w", c.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db failed: %w", err)
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(2 * time.Hour)
	return db, nil
}
