package handler

import (
	"net/http"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/dao"
	"mpay-order-api/internal/dto"
	"mpay-order-api/internal/middleware"
	ordermodel "mpay-order-api/internal/model/order"
	"mpay-order-api/internal/notify"
	"mpay-order-api/internal/service"
	"mpay-order-api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

// AdminHandler 补单、重发通知、通知日志查询
type AdminHandler struct {
	svc  *service.AdminOrderService
	logs *notify.LogService
}

func NewAdminHandler(svc *service.AdminOrderService, logs *notify.LogService) *AdminHandler {
	return &AdminHandler{svc: svc, logs: logs}
}

func (h *AdminHandler) Settle(c *gin.Context) {
	var req dto.ManualSettleReq
	_ = c.ShouldBindJSON(&req)
	o, err := h.svc.ManualSettle(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusOK, utils.Fail(err, middleware.TraceID(c)))
		return
	}
	v, err := service.ToOrderView(o)
	if err != nil {
		c.JSON(http.StatusOK, utils.Fail(err, middleware.TraceID(c)))
		return
	}
	c.JSON(http.StatusOK, utils.Success(v))
}

func (h *AdminHandler) Renotify(c *gin.Context) {
	if err := h.svc.Renotify(c.Request.Context(), c.Param("orderId")); err != nil {
		c.JSON(http.StatusOK, utils.Fail(err, middleware.TraceID(c)))
		return
	}
	c.JSON(http.StatusOK, utils.Success(nil))
}

func (h *AdminHandler) Expire(c *gin.Context) {
	n, err := h.svc.ExpireNow(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, utils.Fail(err, middleware.TraceID(c)))
		return
	}
	c.JSON(http.StatusOK, utils.Success(gin.H{"closed": n}))
}

func (h *AdminHandler) NotifyLogs(c *gin.Context) {
	var req dto.NotifyLogListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusOK, utils.ErrorWithTrace(constant.CodeInvalidParams, middleware.TraceID(c)))
		return
	}
	q := dao.NotifyLogQuery{MID: req.PID, Page: req.Page, PageSize: req.PageSize}
	if req.Status != "" {
		st := notifyStatus(req.Status)
		q.Status = &st
	}
	rows, total, err := h.logs.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusOK, utils.Fail(err, middleware.TraceID(c)))
		return
	}
	views := make([]dto.NotifyLogView, 0, len(rows))
	for i := range rows {
		views = append(views, toNotifyLogView(&rows[i]))
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	c.JSON(http.StatusOK, utils.Success(dto.PageResult[dto.NotifyLogView]{List: views, Total: total, Page: page}))
}

func (h *AdminHandler) NotifyLog(c *gin.Context) {
	row, err := h.logs.Get(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		c.JSON(http.StatusOK, utils.Fail(err, middleware.TraceID(c)))
		return
	}
	c.JSON(http.StatusOK, utils.Success(toNotifyLogView(row)))
}

func toNotifyLogView(row *ordermodel.NotifyLog) dto.NotifyLogView {
	var v dto.NotifyLogView
	_ = copier.Copy(&v, row)
	v.Status = ordermodel.NotifyStatusText(row.Status)
	return v
}

func notifyStatus(s string) int8 {
	switch s {
	case "SUCCEEDED":
		return ordermodel.NotifySucceeded
	case "EXHAUSTED":
		return ordermodel.NotifyExhausted
	}
	return ordermodel.NotifyPendingRetry
}
