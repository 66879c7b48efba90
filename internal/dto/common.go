package dto

import (
	"strconv"
	"time"
)

// AuditContextPayload 请求审计上下文，TraceAudit 中间件写入
type AuditContextPayload struct {
	TraceID   string
	IP        string
	UserAgent string
	StartTime time.Time
	MID       uint64
	OrderID   string
}

func uintToString(v uint64) string {
	return strconv.FormatUint(v, 10)
}
