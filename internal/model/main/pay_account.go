package mainmodel

import "time"

// PayAccount 平台控制的收款账号
type PayAccount struct {
	ID         uint64    `gorm:"column:id;primaryKey" json:"id"`
	PID        uint64    `gorm:"column:pid;index:idx_account_pid;not null" json:"pid"` // 所属商户
	Platform   string    `gorm:"column:platform;type:varchar(32)" json:"platform"`
	Account    string    `gorm:"column:account;type:varchar(64)" json:"account"`
	State      int8      `gorm:"column:state;not null;default:1" json:"state"`
	Pattern    int       `gorm:"column:pattern;not null;default:0" json:"pattern"`
	Params     string    `gorm:"column:params;type:text" json:"params"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
	UpdateTime time.Time `gorm:"column:update_time;autoUpdateTime" json:"update_time"`
}

func (PayAccount) TableName() string { return "mpay_pay_account" }

// PayChannel 账号下的收款码
type PayChannel struct {
	ID        uint64     `gorm:"column:id;primaryKey" json:"id"`
	AccountID uint64     `gorm:"column:account_id;index:idx_channel_account;not null" json:"account_id"`
	Channel   string     `gorm:"column:channel;type:varchar(64)" json:"channel"`
	QRCode    string     `gorm:"column:qrcode;type:varchar(512)" json:"qrcode"`
	Type      string     `gorm:"column:type;type:varchar(32)" json:"type"` // 空表示不限支付方式
	Weight    int        `gorm:"column:weight;not null;default:1" json:"weight"`
	State     int8       `gorm:"column:state;not null;default:1" json:"state"`
	LastTime  *time.Time `gorm:"column:last_time" json:"last_time"`
}

func (PayChannel) TableName() string { return "mpay_pay_channel" }

const (
	StateEnabled  int8 = 1
	StateDisabled int8 = 0
)
