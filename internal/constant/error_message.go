package constant

// ErrorInfo 错误信息结构
type ErrorInfo struct {
	CN string `json:"cn"` // 中文错误信息
	EN string `json:"en"` // 英文错误信息
}

// ErrorMessages 错误信息映射
var ErrorMessages = map[int]ErrorInfo{
	// 系统错误
	CodeSuccess:            {"操作成功", "Success"},
	CodeSystemError:        {"系统错误", "System error"},
	CodeDatabaseError:      {"数据库错误", "Database error"},
	CodeRedisError:         {"缓存服务错误", "Redis error"},
	CodeServiceUnavailable: {"服务暂时不可用", "Service unavailable"},
	CodeTimeout:            {"请求超时", "Timeout"},
	CodeRateLimit:          {"请求过于频繁", "Too many requests"},

	// 参数与认证
	CodeInvalidParams:    {"参数错误", "Invalid params"},
	CodeMissingParams:    {"缺少必要参数", "Missing params"},
	CodeUnauthorized:     {"未授权访问", "Unauthorized"},
	CodeSignatureError:   {"签名验证失败", "Signature error"},
	CodeMerchantDisabled: {"商户已被禁用", "Merchant disabled"},

	// 商户相关错误
	CodeMerchantNotFound:      {"商户不存在", "Merchant not found"},
	CodeMerchantKeyInvalid:    {"商户密钥无效", "Merchant key invalid"},
	CodeMerchantSecretMissing: {"商户未配置密钥", "Merchant secret missing"},

	// 订单相关错误
	CodeOrderNotFound:      {"订单不存在", "Order not found"},
	CodeOrderAlreadyExist:  {"订单已存在", "Order already exists"},
	CodeOrderAmountInvalid: {"订单金额无效", "Order amount invalid"},
	CodeOrderExpired:       {"订单已过期", "Order expired"},
	CodeOrderPaid:          {"订单已支付", "Order already paid"},
	CodeOrderClosed:        {"订单已关闭", "Order closed"},
	CodePriceConflict:      {"金额分配冲突", "Price allocation conflict"},
	CodeOrderStateConflict: {"订单状态已变更", "Order state changed"},
	CodeOrderNotPaid:       {"订单未支付", "Order not paid"},
	CodePaymentTypeInvalid: {"支付方式无效", "Payment type invalid"},

	// 收款通道
	CodeChannelNotFound:    {"收款通道不存在", "Channel not found"},
	CodeChannelUnavailable: {"暂无可用收款通道", "Channel unavailable"},

	// 通知
	CodeNotifyFailed:      {"通知发送失败", "Notify failed"},
	CodeNotifyTimeout:     {"通知超时", "Notify timeout"},
	CodeNotifyURLInvalid:  {"通知地址无效", "Notify url invalid"},
	CodeNotifyRepeat:      {"重复通知", "Duplicate notification"},
	CodeNotifyExhausted:   {"通知重试次数已用完", "Notify retries exhausted"},
	CodeNotifyLogNotFound: {"通知记录不存在", "Notify log not found"},
}
