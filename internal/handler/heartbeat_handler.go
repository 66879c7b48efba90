package handler

import (
	"net/http"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/heartbeat"
	"mpay-order-api/internal/middleware"
	"mpay-order-api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// HeartbeatHandler 监控端读取待支付订单
type HeartbeatHandler struct {
	stream *heartbeat.Stream
}

func NewHeartbeatHandler(stream *heartbeat.Stream) *HeartbeatHandler {
	return &HeartbeatHandler{stream: stream}
}

// Active ?mid= 可选
func (h *HeartbeatHandler) Active(c *gin.Context) {
	list, err := h.stream.FetchActive(c.Request.Context(), cast.ToUint64(c.Query("mid")))
	if err != nil {
		c.JSON(http.StatusOK, utils.Fail(constant.WrapError(constant.CodeRedisError, err), middleware.TraceID(c)))
		return
	}
	c.JSON(http.StatusOK, utils.Success(list))
}

// Read ?from=<offset>&count=
func (h *HeartbeatHandler) Read(c *gin.Context) {
	entries, next, err := h.stream.Read(c.Request.Context(), c.Query("from"), cast.ToInt64(c.Query("count")))
	if err != nil {
		c.JSON(http.StatusOK, utils.Fail(constant.WrapError(constant.CodeRedisError, err), middleware.TraceID(c)))
		return
	}
	c.JSON(http.StatusOK, utils.Success(gin.H{"entries": entries, "next": next}))
}
