package constant

// 业务级错误码 (2xxx)

// 商户相关错误码
const (
	CodeMerchantNotFound      = 2000 // 商户不存在
	CodeMerchantKeyInvalid    = 2004 // 商户密钥无效
	CodeMerchantSecretMissing = 2005 // 商户未配置密钥，无法签名
)

// 订单相关错误码
const (
	CodeOrderNotFound      = 2100 // 订单不存在或没有匹配的待支付订单
	CodeOrderAlreadyExist  = 2101 // 商户订单号重复
	CodeOrderAmountInvalid = 2103 // 订单金额无效
	CodeOrderExpired       = 2104 // 订单已过期
	CodeOrderPaid          = 2105 // 订单已支付
	CodeOrderClosed        = 2107 // 订单已关闭
	CodePriceConflict      = 2108 // 分配金额并发冲突，可重试
	CodeOrderStateConflict = 2109 // 订单状态已被其他流程改变
	CodeOrderNotPaid       = 2110 // 订单未支付，不能补发通知
	CodePaymentTypeInvalid = 2111 // 支付方式无效
)

// 支付通道相关错误码
const (
	CodeChannelNotFound    = 2200 // 收款通道不存在
	CodeChannelUnavailable = 2206 // 没有可用的收款账号或通道
)

// 通知相关错误码
const (
	CodeNotifyFailed      = 2700 // 通知发送失败，可重试
	CodeNotifyTimeout     = 2701 // 通知超时，可重试
	CodeNotifyURLInvalid  = 2703 // 通知地址无效，按发送失败处理
	CodeNotifyRepeat      = 2704 // 重复观测，已处理过该流水
	CodeNotifyExhausted   = 2705 // 同步重试已用完，转入异步重试
	CodeNotifyLogNotFound = 2706 // 通知记录不存在
)
