package middleware

import (
	"time"

	"mpay-order-api/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func RequestLogger() gin.HandlerFunc {
	infoLog := logger.NewLogger("info")
	errorLog := logger.NewLogger("error")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		a := Audit(c)
		entry := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         a.IP,
			"latency":    latency.String(),
			"user-agent": c.Request.UserAgent(),
			"traceId":    a.TraceID,
		}
		if a.MID > 0 {
			entry["mid"] = a.MID
		}
		if a.OrderID != "" {
			entry["orderId"] = a.OrderID
		}

		if len(c.Errors) > 0 || c.Writer.Status() >= 500 {
			errorLog.WithFields(entry).Error(c.Errors.String())
		} else {
			infoLog.WithFields(entry).Info("request completed")
		}
	}
}
