package notify

import (
	ordermodel "mpay-order-api/internal/model/order"
	"mpay-order-api/internal/utils"
)

const TradeSuccess = "TRADE_SUCCESS"

// BuildPayload 商户回调参数；secret 为空时不签名，由商户自行决定是否信任
func BuildPayload(o *ordermodel.Order, secret string) map[string]string {
	p := map[string]string{
		"pid":          utils.FormatUint(o.MID),
		"trade_no":     o.OrderID,
		"out_trade_no": o.OutTradeNo,
		"type":         o.PayType,
		"name":         o.Name,
		"money":        o.Money.StringFixed(2),
		"really_price": o.ReallyPrice.StringFixed(2),
		"trade_status": TradeSuccess,
	}
	if o.Param != "" {
		p["param"] = o.Param
	}
	if secret != "" {
		p["sign"] = utils.GenerateSign(p, secret)
		p["sign_type"] = "MD5"
	}
	return p
}
