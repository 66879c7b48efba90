package utils

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// BuildSignString 按 key 升序拼接 k=v&k=v，跳过 sign、sign_type 和空值
func BuildSignString(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || k == "sign_type" || strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString("&")
		}
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(params[k])
	}
	return sb.String()
}

// GenerateSign md5(拼接串 + 密钥)，小写十六进制，与商户端 SDK 保持一致
func GenerateSign(params map[string]string, secretKey string) string {
	hash := md5.Sum([]byte(BuildSignString(params) + secretKey))
	return hex.EncodeToString(hash[:])
}

// VerifySign 验证签名是否匹配
func VerifySign(params map[string]string, secretKey string) bool {
	receivedSign := params["sign"]
	if receivedSign == "" {
		return false
	}
	return strings.EqualFold(receivedSign, GenerateSign(params, secretKey))
}
