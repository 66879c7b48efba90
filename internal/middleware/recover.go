package middleware

import (
	"net/http"
	"runtime/debug"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/logger"
	"mpay-order-api/internal/utils"

	"github.com/gin-gonic/gin"
)

func Recover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.L.WithField("traceId", TraceID(c)).
					Errorf("[PANIC] %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, r, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, utils.ErrorWithTrace(constant.CodeSystemError, TraceID(c)))
			}
		}()
		c.Next()
	}
}
