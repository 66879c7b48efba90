package rediskey

import "fmt"

const prefix = "mpay"

// RecordKey 支付流水去重标记，监控端重复上报同一笔流水时命中
func RecordKey(platformOrder string) string {
	return fmt.Sprintf("%s:record:%s", prefix, platformOrder)
}

// ChannelRRKey 通道轮询状态
func ChannelRRKey(mid uint64, payType string) string {
	return fmt.Sprintf("%s:rr:%d:%s", prefix, mid, payType)
}

// ChannelRateKey 通道支付成功率
func ChannelRateKey(cid uint64) string {
	return fmt.Sprintf("%s:channel:success_rate:%d", prefix, cid)
}

// ChannelDisabledKey 通道熔断标记
func ChannelDisabledKey(cid uint64) string {
	return fmt.Sprintf("%s:channel:disabled:%d", prefix, cid)
}

// SysConfigKey 参数配置缓存 hash
func SysConfigKey() string {
	return prefix + ":system:config"
}
