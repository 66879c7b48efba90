package handler

import (
	"net/http"
	"strings"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/dto"
	"mpay-order-api/internal/logger"
	"mpay-order-api/internal/middleware"
	"mpay-order-api/internal/service"
	"mpay-order-api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// MatchHandler 监控端上报到账
type MatchHandler struct {
	svc *service.OrderMatchService
}

func NewMatchHandler(svc *service.OrderMatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

func (h *MatchHandler) Match(c *gin.Context) {
	traceID := middleware.TraceID(c)
	var req dto.MatchPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, utils.ErrorWithTrace(constant.CodeInvalidParams, traceID))
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		c.JSON(http.StatusOK, utils.ErrorWithTrace(constant.CodeOrderAmountInvalid, traceID))
		return
	}
	middleware.Audit(c).MID = req.PID

	o, err := h.svc.MatchPayment(c.Request.Context(), service.MatchCommand{
		MID:           req.PID,
		AID:           req.AID,
		PayType:       req.Payway,
		Amount:        price,
		PlatformOrder: req.PlatformOrder,
	})
	if err != nil {
		// 未匹配的到账留给人工核对
		if constant.IsCode(err, constant.CodeOrderNotFound) {
			logger.L.WithField("traceId", traceID).Warnf("[MATCH] 未匹配到账 pid=%d aid=%d channel=%s payway=%s price=%s ref=%s",
				req.PID, req.AID, req.Channel, req.Payway, req.Price, req.PlatformOrder)
		}
		c.JSON(http.StatusOK, utils.Fail(err, traceID))
		return
	}
	middleware.Audit(c).OrderID = o.OrderID
	c.JSON(http.StatusOK, utils.Success(dto.MatchPaymentResp{
		OrderID:    o.OrderID,
		OutTradeNo: o.OutTradeNo,
		Status:     o.Status,
	}))
}
