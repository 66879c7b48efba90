package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"mpay-order-api/internal/config"
	"mpay-order-api/internal/dal"
	mainmodel "mpay-order-api/internal/model/main"
	ordermodel "mpay-order-api/internal/model/order"
	"mpay-order-api/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewDB 每个测试一个内存库，单连接让并发请求排队而不是互相锁表
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := dal.OpenDB(config.DatabaseCfg{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := dal.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedMerchantWithChannel 一个商户、一个账号、一个通道，返回 (mid, aid, cid)
func SeedMerchantWithChannel(t testing.TB, db *gorm.DB, secret string) (uint64, uint64, uint64) {
	t.Helper()
	m := mainmodel.Merchant{ID: 1000, Name: "demo", SecretKey: secret, Status: 1}
	a := mainmodel.PayAccount{ID: 10, PID: m.ID, Platform: "alipay", Account: "acc", State: mainmodel.StateEnabled, Pattern: 1}
	c := mainmodel.PayChannel{ID: 100, AccountID: a.ID, Channel: "qr-1", Type: "alipay", Weight: 1, State: mainmodel.StateEnabled}
	for _, v := range []interface{}{&m, &a, &c} {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return m.ID, a.ID, c.ID
}

// PendingOrder 构造一条待支付订单，createdAt 由调用方控制先后
func PendingOrder(orderID string, mid, aid, cid uint64, price string, createdAt time.Time) *ordermodel.Order {
	p := decimal.RequireFromString(price)
	slot := utils.ToCents(p)
	return &ordermodel.Order{
		OrderID:     orderID,
		MID:         mid,
		OutTradeNo:  "M" + orderID,
		PayType:     "alipay",
		Money:       p,
		ReallyPrice: p,
		PriceSlot:   &slot,
		Status:      ordermodel.StatusPending,
		AID:         aid,
		CID:         cid,
		NotifyURL:   "http://127.0.0.1/notify",
		CreateTime:  createdAt,
		ExpireTime:  createdAt.Add(3 * time.Minute),
	}
}
