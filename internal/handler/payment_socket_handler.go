package handler

import (
	"context"
	"net/http"
	"time"

	"mpay-order-api/internal/logger"
	"mpay-order-api/internal/middleware"
	ordermodel "mpay-order-api/internal/model/order"
	"mpay-order-api/internal/realtime"
	"mpay-order-api/internal/service"
	"mpay-order-api/internal/utils"

	"github.com/gin-gonic/gin"
)

// PaymentSocketHandler 收银台订阅支付结果
type PaymentSocketHandler struct {
	hub    *realtime.Hub
	pusher *realtime.Pusher
	orders service.OrderReader
}

func NewPaymentSocketHandler(hub *realtime.Hub, pusher *realtime.Pusher, orders service.OrderReader) *PaymentSocketHandler {
	return &PaymentSocketHandler{hub: hub, pusher: pusher, orders: orders}
}

func (h *PaymentSocketHandler) Serve(c *gin.Context) {
	orderID := c.Param("orderId")
	o, err := h.orders.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		logger.L.Errorf("[WS] 查询订单失败 orderId=%s: %v", orderID, err)
		c.JSON(http.StatusOK, utils.Fail(err, middleware.TraceID(c)))
		return
	}
	if o == nil {
		c.Status(http.StatusNotFound)
		return
	}

	h.hub.ServeOrder(c.Writer, c.Request, orderID, func() { h.replay(orderID) })
}

// replay 连接登记之后重新读取订单，补推登记前已经产生的结果
func (h *PaymentSocketHandler) replay(orderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	o, err := h.orders.GetByOrderID(ctx, orderID)
	if err != nil || o == nil {
		logger.L.Warnf("[WS] 补推时查询订单失败 orderId=%s: %v", orderID, err)
		return
	}
	switch o.Status {
	case ordermodel.StatusPaid:
		h.pusher.SendPaymentSuccess(o.OrderID, o.PlatformOrder)
	case ordermodel.StatusClosed:
		h.pusher.SendPaymentFailed(o.OrderID, "订单已过期")
	}
}
