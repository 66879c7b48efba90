package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultTrustedProxies 本机与内网的反向代理
var DefaultTrustedProxies = []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}

// ClientIP 客户端 IP
// 只有来自可信代理的请求才采信 X-Forwarded-For / X-Real-IP，其余一律取连接地址，
// 直连的调用方无法通过伪造请求头切换身份
func ClientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return ""
}
