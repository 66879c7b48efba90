package handler

import (
	"net/http"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/middleware"
	"mpay-order-api/internal/service"
	"mpay-order-api/internal/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler 商户下单与收银台
type OrderHandler struct {
	svc     *service.PublicOrderService
	cashier *service.CashierService
}

func NewOrderHandler(svc *service.PublicOrderService, cashier *service.CashierService) *OrderHandler {
	return &OrderHandler{svc: svc, cashier: cashier}
}

// Create 请求已经过 SignVerify
func (h *OrderHandler) Create(c *gin.Context) {
	audit := middleware.Audit(c)
	req := middleware.PayRequest(c)
	if req == nil {
		c.JSON(http.StatusOK, utils.ErrorWithTrace(constant.CodeMissingParams, audit.TraceID))
		return
	}

	resp, err := h.svc.CreateOrder(c.Request.Context(), req, audit.IP)
	if err != nil {
		c.JSON(http.StatusOK, utils.Fail(err, audit.TraceID))
		return
	}
	audit.OrderID = resp.OrderID
	r := utils.Success(resp)
	r.TraceID = audit.TraceID
	c.JSON(http.StatusOK, r)
}

func (h *OrderHandler) Cashier(c *gin.Context) {
	orderID := c.Param("orderId")
	middleware.Audit(c).OrderID = orderID
	v, err := h.cashier.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusOK, utils.Fail(err, middleware.TraceID(c)))
		return
	}
	c.JSON(http.StatusOK, utils.Success(v))
}

// CashierState 收银台轮询
func (h *OrderHandler) CashierState(c *gin.Context) {
	v, err := h.cashier.State(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusOK, utils.Fail(err, middleware.TraceID(c)))
		return
	}
	c.JSON(http.StatusOK, utils.Success(v))
}
