package handler

import (
	"net/http"

	"mpay-order-api/internal/logger"
	"mpay-order-api/internal/middleware"
	"mpay-order-api/internal/utils"

	"github.com/gin-gonic/gin"
)

// RouterDeps 路由依赖，由 cmd 组装
type RouterDeps struct {
	Orders         *OrderHandler
	Match          *MatchHandler
	Heartbeat      *HeartbeatHandler
	Socket         *PaymentSocketHandler
	Admin          *AdminHandler
	SignVerify     gin.HandlerFunc
	InternalToken  string
	RateLimit      string
	Mode           string
	// 为空时用 utils.DefaultTrustedProxies
	TrustedProxies []string
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// 设置可信代理 IP（如本地或内网），限流与审计的客户端 IP 依赖它
	proxies := d.TrustedProxies
	if len(proxies) == 0 {
		proxies = utils.DefaultTrustedProxies
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		logger.L.Errorf("[ROUTER] 可信代理配置无效 %v: %v", proxies, err)
		_ = r.SetTrustedProxies(utils.DefaultTrustedProxies)
	}
	r.Use(middleware.TraceAudit(), middleware.Recover(), middleware.RequestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	limit := middleware.RateLimit(d.RateLimit)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/orders", limit, d.SignVerify, d.Orders.Create)
		v1.GET("/cashier/:orderId", d.Orders.Cashier)
		v1.GET("/cashier/:orderId/state", limit, d.Orders.CashierState)
	}

	r.GET("/ws/payment/:orderId", d.Socket.Serve)

	internal := r.Group("/api/internal", middleware.InternalAuth(d.InternalToken), limit)
	{
		internal.POST("/orders/match", d.Match.Match)
		internal.GET("/heartbeat", d.Heartbeat.Active)
		internal.GET("/heartbeat/stream", d.Heartbeat.Read)
	}

	admin := r.Group("/api/admin", middleware.InternalAuth(d.InternalToken))
	{
		admin.POST("/orders/:orderId/settle", d.Admin.Settle)
		admin.POST("/orders/:orderId/renotify", d.Admin.Renotify)
		admin.POST("/orders/expire", d.Admin.Expire)
		admin.GET("/notify-logs", d.Admin.NotifyLogs)
		admin.GET("/notify-logs/:orderId", d.Admin.NotifyLog)
	}
	return r
}
