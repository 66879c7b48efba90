package middleware

import (
	"time"

	"mpay-order-api/internal/dto"
	"mpay-order-api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const auditKey = "audit_ctx"

// TraceAudit 生成 traceId，上游已带 X-Trace-ID 时沿用
func TraceAudit() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Set(auditKey, &dto.AuditContextPayload{
			TraceID:   traceID,
			IP:        utils.ClientIP(c),
			UserAgent: c.GetHeader("User-Agent"),
			StartTime: time.Now(),
		})
		c.Writer.Header().Set("X-Trace-ID", traceID)
		c.Next()
	}
}

func Audit(c *gin.Context) *dto.AuditContextPayload {
	if v, ok := c.Get(auditKey); ok {
		if a, ok := v.(*dto.AuditContextPayload); ok {
			return a
		}
	}
	return &dto.AuditContextPayload{StartTime: time.Now()}
}

func TraceID(c *gin.Context) string {
	return Audit(c).TraceID
}
