package ordermodel

import "time"

// 通知日志状态
const (
	NotifyPendingRetry int8 = 0
	NotifySucceeded    int8 = 1
	NotifyExhausted    int8 = 2
)

// NotifyLog 商户通知失败记录，每个订单最多一行，只更新不删除
// Version 是调度器认领该行的令牌，认领和回写都以它为条件
type NotifyLog struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID     string    `gorm:"column:order_id;type:varchar(32);uniqueIndex:uk_notify_order;not null" json:"order_id"`
	MID         uint64    `gorm:"column:m_id;index:idx_notify_mid;not null" json:"m_id"`
	Status      int8      `gorm:"column:status;index:idx_notify_due,priority:1;not null;default:0" json:"status"`
	RetryCount  int       `gorm:"column:retry_count;not null;default:0" json:"retry_count"`
	LastError   string    `gorm:"column:last_error;type:varchar(1024)" json:"last_error"`
	NextRetryAt time.Time `gorm:"column:next_retry_at;index:idx_notify_due,priority:2;not null" json:"next_retry_at"`
	Version     int64     `gorm:"column:version;not null;default:0" json:"-"`
	CreateTime  time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
	UpdateTime  time.Time `gorm:"column:update_time;autoUpdateTime" json:"update_time"`
}

func (NotifyLog) TableName() string { return "mpay_notify_log" }

func NotifyStatusText(s int8) string {
	switch s {
	case NotifyPendingRetry:
		return "PENDING_RETRY"
	case NotifySucceeded:
		return "SUCCEEDED"
	case NotifyExhausted:
		return "EXHAUSTED"
	}
	return "UNKNOWN"
}
