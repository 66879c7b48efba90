package dal

import (
	"context"
	"fmt"
	"log"

	"mpay-order-api/internal/config"

	"github.com/go-redis/redis/v8"
)

// RedisClient 心跳流、轮询状态、流水去重、通道成功率共用
var RedisClient *redis.Client

func InitRedis() {
	rdb, err := OpenRedis(config.C.Redis)
	if err != nil {
		log.Fatalf("connect redis failed: %v", err)
	}
	RedisClient = rdb
}

// OpenRedis 建立连接并 PING 一次，失败时关闭客户端
func OpenRedis(c config.RedisCfg) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		MaxRetries:   1,
	})
	timeout := c.DialTimeout
	if timeout <= 0 {
		timeout = config.DefaultRedisDialTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", c.Addr, err)
	}
	return rdb, nil
}

func CloseRedis() {
	if RedisClient != nil {
		_ = RedisClient.Close()
	}
}
