package ordermodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// 订单状态
const (
	StatusPending int8 = 0 // 待支付
	StatusPaid    int8 = 1 // 已支付
	StatusClosed  int8 = 2 // 已关闭
)

// Order 支付订单
// PriceSlot 只在待支付时非空，唯一索引 uk_pending_price 保证同一账号/通道/支付方式下待支付金额不重复，
// 支付或关闭后置 NULL 释放该金额
type Order struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID       string          `gorm:"column:order_id;type:varchar(32);uniqueIndex:uk_order_id;not null" json:"order_id"`
	MID           uint64          `gorm:"column:m_id;uniqueIndex:uk_merchant_out_trade,priority:1;index:idx_match,priority:1;not null" json:"m_id"`
	OutTradeNo    string          `gorm:"column:out_trade_no;type:varchar(64);uniqueIndex:uk_merchant_out_trade,priority:2;not null" json:"out_trade_no"`
	PayType       string          `gorm:"column:pay_type;type:varchar(32);uniqueIndex:uk_pending_price,priority:3;index:idx_match,priority:3;not null" json:"pay_type"`
	Name          string          `gorm:"column:name;type:varchar(128)" json:"name"`
	Money         decimal.Decimal `gorm:"column:money;type:decimal(12,2);not null" json:"money"`
	ReallyPrice   decimal.Decimal `gorm:"column:really_price;type:decimal(12,2);not null" json:"really_price"`
	PriceSlot     *int64          `gorm:"column:price_slot;uniqueIndex:uk_pending_price,priority:4" json:"-"`
	Status        int8            `gorm:"column:status;index:idx_match,priority:4;index:idx_status_create,priority:1;not null;default:0" json:"status"`
	AID           uint64          `gorm:"column:aid;uniqueIndex:uk_pending_price,priority:1;index:idx_match,priority:2;not null" json:"aid"`
	CID           uint64          `gorm:"column:cid;uniqueIndex:uk_pending_price,priority:2;not null" json:"cid"`
	Pattern       int             `gorm:"column:pattern;not null;default:0" json:"pattern"`
	NotifyURL     string          `gorm:"column:notify_url;type:varchar(512)" json:"notify_url"`
	ReturnURL     string          `gorm:"column:return_url;type:varchar(512)" json:"return_url"`
	ClientIP      string          `gorm:"column:client_ip;type:varchar(64)" json:"client_ip"`
	Device        string          `gorm:"column:device;type:varchar(32)" json:"device"`
	Param         string          `gorm:"column:param;type:varchar(512)" json:"param"`
	PlatformOrder string          `gorm:"column:platform_order;type:varchar(128);index:idx_platform_order" json:"platform_order"`
	CreateTime    time.Time       `gorm:"column:create_time;index:idx_status_create,priority:2;not null" json:"create_time"`
	ExpireTime    time.Time       `gorm:"column:expire_time;not null" json:"expire_time"`
	PayTime       *time.Time      `gorm:"column:pay_time" json:"pay_time"`
	CloseTime     *time.Time      `gorm:"column:close_time" json:"close_time"`
	UpdateTime    time.Time       `gorm:"column:update_time;autoUpdateTime" json:"update_time"`
}

func (Order) TableName() string { return "mpay_order" }

func (o *Order) IsPending() bool { return o.Status == StatusPending }

func (o *Order) IsPaid() bool { return o.Status == StatusPaid }

func (o *Order) IsClosed() bool { return o.Status == StatusClosed }

// StatusText 对外展示的状态名
func StatusText(s int8) string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusPaid:
		return "PAID"
	case StatusClosed:
		return "CLOSED"
	}
	return "UNKNOWN"
}
