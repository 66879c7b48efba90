package mainmodel

import "time"

// Merchant 商户，由管理端维护，这里只读
type Merchant struct {
	ID         uint64    `gorm:"column:id;primaryKey" json:"id"`
	Name       string    `gorm:"column:name;type:varchar(64)" json:"name"`
	SecretKey  string    `gorm:"column:secret_key;type:varchar(128)" json:"-"`
	NotifyURL  string    `gorm:"column:notify_url;type:varchar(512)" json:"notify_url"`
	Status     int8      `gorm:"column:status;not null;default:1" json:"status"` // 1 启用
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
}

func (Merchant) TableName() string { return "mpay_merchant" }
