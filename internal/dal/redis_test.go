package dal

import (
	"testing"
	"time"

	"mpay-order-api/internal/config"
)

func TestOpenRedisFailsFastWhenUnreachable(t *testing.T) {
	start := time.Now()
	// 端口 1 通常没有服务监听
	rdb, err := OpenRedis(config.RedisCfg{Addr: "127.0.0.1:1", DialTimeout: 300 * time.Millisecond})
	if err == nil {
		_ = rdb.Close()
		t.Skip("something is listening on 127.0.0.1:1")
	}
	if rdb != nil {
		t.Fatal("client should be nil on error")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("took %s", time.Since(start))
	}
}
