package dto

import "time"

type NotifyLogListReq struct {
	PID      uint64 `form:"pid"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING_RETRY SUCCEEDED EXHAUSTED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

type NotifyLogView struct {
	OrderID     string    `json:"trade_no"`
	MID         uint64    `json:"pid"`
	Status      string    `json:"status"`
	RetryCount  int       `json:"retry_count"`
	LastError   string    `json:"last_error"`
	NextRetryAt time.Time `json:"next_retry_at"`
	CreateTime  time.Time `json:"create_time"`
	UpdateTime  time.Time `json:"update_time"`
}

type PageResult[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
}
