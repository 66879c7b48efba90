package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"mpay-order-api/internal/constant"
	"mpay-order-api/internal/dto"
	"mpay-order-api/internal/logger"
	mainmodel "mpay-order-api/internal/model/main"
	"mpay-order-api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const payRequestKey = "pay_request"

// MerchantLookup MerchantSecretService 实现
type MerchantLookup interface {
	Merchant(ctx context.Context, mid uint64) (*mainmodel.Merchant, error)
}

// SignAlerter 验签失败告警
type SignAlerter interface {
	Alert(title string, fields map[string]string)
}

// SignVerify 下单请求校验：参数、商户状态、签名
// 商户未配置密钥时，requireSign 为 true 直接拒绝，否则放行不验签
func SignVerify(merchants MerchantLookup, requireSign bool, alerter SignAlerter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreateOrderReq
		if err := c.ShouldBind(&req); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				errFields := make([]map[string]string, 0, len(ve))
				for _, fe := range ve {
					errFields = append(errFields, map[string]string{
						"field": fe.Field(),
						"error": fe.Tag(),
					})
				}
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"code":     constant.CodeInvalidParams,
					"msg":      "参数校验失败",
					"errors":   errFields,
					"trace_id": TraceID(c),
				})
				return
			}
			logger.L.Warnf("[SIGN] 请求无法解析: %v", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, utils.ErrorWithTrace(constant.CodeInvalidParams, TraceID(c)))
			return
		}
		Audit(c).MID = req.PID

		merchant, err := merchants.Merchant(c.Request.Context(), req.PID)
		if err != nil {
			logger.L.Errorf("[SIGN] 查询商户失败 mid=%d: %v", req.PID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, utils.ErrorWithTrace(constant.CodeDatabaseError, TraceID(c)))
			return
		}
		if merchant == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorWithTrace(constant.CodeMerchantNotFound, TraceID(c)))
			return
		}
		if merchant.Status != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorWithTrace(constant.CodeMerchantDisabled, TraceID(c)))
			return
		}

		if merchant.SecretKey == "" {
			if requireSign {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, utils.ErrorWithTrace(constant.CodeMerchantSecretMissing, TraceID(c)))
				return
			}
			logger.L.Warnf("[SIGN] 商户 %d 未配置密钥，跳过验签", req.PID)
		} else if !utils.VerifySign(req.SignParams(), merchant.SecretKey) {
			if alerter != nil {
				alerter.Alert("下单验签失败", map[string]string{
					"商户":    fmt.Sprint(req.PID),
					"商户订单号": req.OutTradeNo,
					"IP":    Audit(c).IP,
				})
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorWithTrace(constant.CodeSignatureError, TraceID(c)))
			return
		}

		c.Set(payRequestKey, &req)
		c.Next()
	}
}

// PayRequest 取 SignVerify 解析好的请求
func PayRequest(c *gin.Context) *dto.CreateOrderReq {
	v, _ := c.Get(payRequestKey)
	req, _ := v.(*dto.CreateOrderReq)
	return req
}
