package middleware

import (
	"net/http"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/logger"
	"mpay-order-api/internal/utils"

	"github.com/gin-gonic/gin"
	limiterlib "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit 按客户端 IP 限流，格式 "50-S"、"1000-M"
// 格式错误时不限流，只打日志
func RateLimit(formatted string) gin.HandlerFunc {
	rate, err := limiterlib.NewRateFromFormatted(formatted)
	if err != nil {
		logger.L.Errorf("[LIMITER] 限流配置无效 %q: %v", formatted, err)
		return func(c *gin.Context) { c.Next() }
	}
	store := memory.NewStoreWithOptions(limiterlib.StoreOptions{Prefix: "mpay:limiter"})
	return mgin.NewMiddleware(limiterlib.New(store, rate),
		mgin.WithKeyGetter(func(c *gin.Context) string {
			return c.FullPath() + "|" + utils.ClientIP(c)
		}),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.ErrorWithTrace(constant.CodeRateLimit, TraceID(c)))
		}),
	)
}
