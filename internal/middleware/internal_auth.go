package middleware

import (
	"crypto/subtle"
	"net/http"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/utils"

	"github.com/gin-gonic/gin"
)

// InternalAuth 监控端与管理端调用，X-Internal-Token 必须与配置一致
// token 未配置时拒绝所有请求
func InternalAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Internal-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorWithTrace(constant.CodeUnauthorized, TraceID(c)))
			return
		}
		c.Next()
	}
}
