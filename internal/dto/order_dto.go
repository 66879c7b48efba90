package dto

import "time"

// CreateOrderReq 商户下单，字段名与易支付兼容
type CreateOrderReq struct {
	PID        uint64 `json:"pid" form:"pid" binding:"required"`
	Type       string `json:"type" form:"type" binding:"required,max=32"`
	OutTradeNo string `json:"out_trade_no" form:"out_trade_no" binding:"required,max=64"`
	NotifyURL  string `json:"notify_url" form:"notify_url" binding:"required,max=512"`
	ReturnURL  string `json:"return_url" form:"return_url" binding:"max=512"`
	Name       string `json:"name" form:"name" binding:"max=128"`
	Money      string `json:"money" form:"money" binding:"required"`
	ClientIP   string `json:"clientip" form:"clientip" binding:"max=64"`
	Device     string `json:"device" form:"device" binding:"max=32"`
	Param      string `json:"param" form:"param" binding:"max=512"`
	Sign       string `json:"sign" form:"sign" binding:"max=64"`
	SignType   string `json:"sign_type" form:"sign_type"`
}

// SignParams 参与验签的字段
func (r *CreateOrderReq) SignParams() map[string]string {
	return map[string]string{
		"pid":          uintToString(r.PID),
		"type":         r.Type,
		"out_trade_no": r.OutTradeNo,
		"notify_url":   r.NotifyURL,
		"return_url":   r.ReturnURL,
		"name":         r.Name,
		"money":        r.Money,
		"clientip":     r.ClientIP,
		"device":       r.Device,
		"param":        r.Param,
		"sign":         r.Sign,
	}
}

type CreateOrderResp struct {
	OrderID     string    `json:"trade_no"`
	OutTradeNo  string    `json:"out_trade_no"`
	Type        string    `json:"type"`
	Money       string    `json:"money"`
	ReallyPrice string    `json:"really_price"`
	PayURL      string    `json:"pay_url"`
	ExpireTime  time.Time `json:"expire_time"`
}

// MatchPaymentReq 监控端上报的到账记录
type MatchPaymentReq struct {
	PID           uint64 `json:"pid" binding:"required"`
	AID           uint64 `json:"aid" binding:"required"`
	Channel       string `json:"channel"`
	Payway        string `json:"payway" binding:"required"`
	Price         string `json:"price" binding:"required"`
	PlatformOrder string `json:"platform_order" binding:"max=128"`
}

type MatchPaymentResp struct {
	OrderID    string `json:"trade_no"`
	OutTradeNo string `json:"out_trade_no"`
	Status     int8   `json:"status"`
}

// OrderView 收银台与管理端查看的订单
type OrderView struct {
	OrderID       string     `json:"trade_no"`
	MID           uint64     `json:"pid"`
	OutTradeNo    string     `json:"out_trade_no"`
	PayType       string     `json:"type"`
	Name          string     `json:"name"`
	Money         string     `json:"money"`
	ReallyPrice   string     `json:"really_price"`
	Status        int8       `json:"status"`
	AID           uint64     `json:"aid"`
	CID           uint64     `json:"cid"`
	Pattern       int        `json:"pattern"`
	ReturnURL     string     `json:"return_url"`
	PlatformOrder string     `json:"platform_order,omitempty"`
	CreateTime    time.Time  `json:"create_time"`
	ExpireTime    time.Time  `json:"expire_time"`
	PayTime       *time.Time `json:"pay_time,omitempty"`
	CloseTime     *time.Time `json:"close_time,omitempty"`
}

// OrderStateView 收银台轮询
type OrderStateView struct {
	OrderID   string `json:"trade_no"`
	Status    int8   `json:"status"`
	State     string `json:"state"`
	ExpireIn  int64  `json:"expire_in"` // 剩余秒数，已过期为 0
	ReturnURL string `json:"return_url,omitempty"`
}

type ManualSettleReq struct {
	Remark string `json:"remark" binding:"max=128"`
}
