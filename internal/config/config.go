package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	// 收银台地址前缀，创建订单时拼接 payUrl
	CashierURL string `mapstructure:"cashierUrl"`
	// 反向代理地址，只有来自这些地址的 X-Forwarded-For 才被采信
	TrustedProxies []string `mapstructure:"trustedProxies"`
}

type DatabaseCfg struct {
	Driver       string `mapstructure:"driver"` // mysql | postgres | sqlite
	DSN          string `mapstructure:"dsn"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Database     string `mapstructure:"database"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Charset      string `mapstructure:"charset"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
	AutoMigrate  bool   `mapstructure:"autoMigrate"`
}

type RabbitCfg struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type RedisCfg struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"poolSize"`
	DialTimeout  time.Duration `mapstructure:"dialTimeout"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

type OrderCfg struct {
	// 付款人看到的倒计时
	PayTimeoutSec int `mapstructure:"payTimeoutSec"`
	// 超过该时长仍未支付的订单由定时任务关闭
	ExpireMinutes    int           `mapstructure:"expireMinutes"`
	SweepInterval    time.Duration `mapstructure:"sweepInterval"`
	PersistAttempts  int           `mapstructure:"persistAttempts"`
	SnowflakeNodeID  int64         `mapstructure:"snowflakeNodeId"`
	RecordDedupTTL   time.Duration `mapstructure:"recordDedupTtl"`
	RequireSignature bool          `mapstructure:"requireSignature"`
}

type ChannelCfg struct {
	Policy string `mapstructure:"policy"` // first | round_robin
	// 成功率低于阈值的通道熔断，0 关闭
	HealthThreshold float64       `mapstructure:"healthThreshold"`
	HealthStrategy  string        `mapstructure:"healthStrategy"` // ewma | decay | sliding
	HealthTripTTL   time.Duration `mapstructure:"healthTripTtl"`
}

type NotifyCfg struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	InlineAttempts int           `mapstructure:"inlineAttempts"`
	Backoff        time.Duration `mapstructure:"backoff"`
	MaxRetries     int           `mapstructure:"maxRetries"` // 0 表示不设上限
	ScanInterval   time.Duration `mapstructure:"scanInterval"`
	BatchSize      int           `mapstructure:"batchSize"`
	ClaimLease     time.Duration `mapstructure:"claimLease"`
	QPS            float64       `mapstructure:"qps"`
	SecretCacheTTL time.Duration `mapstructure:"secretCacheTtl"`
	SecretCacheMax int           `mapstructure:"secretCacheMax"`
}

type HeartbeatCfg struct {
	StreamKey string `mapstructure:"streamKey"`
	MaxLen    int64  `mapstructure:"maxLen"`
}

type RealtimeCfg struct {
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	QueueSize    int           `mapstructure:"queueSize"`
}

type LimiterCfg struct {
	// ulule 格式，如 "20-S"
	Rate string `mapstructure:"rate"`
}

type InternalCfg struct {
	AuthToken string `mapstructure:"authToken"`
}

type TelegramCfg struct {
	ChatID string `mapstructure:"chatId"`
}

type LogCfg struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level"`
}

type Root struct {
	Server    ServerCfg    `mapstructure:"server"`
	Database  DatabaseCfg  `mapstructure:"database"`
	RabbitMQ  RabbitCfg    `mapstructure:"rabbitmq"`
	Redis     RedisCfg     `mapstructure:"redis"`
	Order     OrderCfg     `mapstructure:"order"`
	Channel   ChannelCfg   `mapstructure:"channel"`
	Notify    NotifyCfg    `mapstructure:"notify"`
	Heartbeat HeartbeatCfg `mapstructure:"heartbeat"`
	Realtime  RealtimeCfg  `mapstructure:"realtime"`
	Limiter   LimiterCfg   `mapstructure:"limiter"`
	Internal  InternalCfg  `mapstructure:"internal"`
	Telegram  TelegramCfg  `mapstructure:"telegram"`
	Log       LogCfg       `mapstructure:"log"`
}

var C Root

const DefaultRedisDialTimeout = 2 * time.Second

// Init 读取 config/config.<env>.yaml，失败直接退出
func Init(env string) {
	c, err := Load(env)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	C = c
}

// Load 读取配置文件并叠加 MPAY_ 前缀的环境变量
func Load(env string) (Root, error) {
	_ = godotenv.Load() // .env 可选

	v := viper.New()
	v.SetConfigFile("config/config." + env + ".yaml")
	v.SetEnvPrefix("MPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("notify.maxRetries", 11)

	var c Root
	if err := v.ReadInConfig(); err != nil {
		return c, fmt.Errorf("read config file failed: %w", err)
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("unmarshal config failed: %w", err)
	}
	ApplyDefaults(&c)
	return c, nil
}

// ApplyDefaults sane defaults
func ApplyDefaults(c *Root) {
	if strings.TrimSpace(c.Server.Port) == "" {
		c.Server.Port = "8080"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Redis.DialTimeout <= 0 {
		c.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "order_events"
	}

	if c.Order.PayTimeoutSec <= 0 {
		c.Order.PayTimeoutSec = 180
	}
	if c.Order.ExpireMinutes <= 0 {
		c.Order.ExpireMinutes = 30
	}
	if c.Order.SweepInterval <= 0 {
		c.Order.SweepInterval = 5 * time.Minute
	}
	if c.Order.PersistAttempts <= 0 {
		c.Order.PersistAttempts = 3
	}
	if c.Order.RecordDedupTTL <= 0 {
		c.Order.RecordDedupTTL = 24 * time.Hour
	}
	if c.Channel.Policy == "" {
		c.Channel.Policy = "first"
	}
	if c.Channel.HealthTripTTL <= 0 {
		c.Channel.HealthTripTTL = 10 * time.Minute
	}

	if c.Notify.Timeout <= 0 {
		c.Notify.Timeout = 5 * time.Second
	}
	if c.Notify.InlineAttempts <= 0 {
		c.Notify.InlineAttempts = 3
	}
	if c.Notify.Backoff <= 0 {
		c.Notify.Backoff = 500 * time.Millisecond
	}
	if c.Notify.MaxRetries < 0 {
		c.Notify.MaxRetries = 0
	}
	if c.Notify.ScanInterval <= 0 {
		c.Notify.ScanInterval = time.Minute
	}
	if c.Notify.BatchSize <= 0 {
		c.Notify.BatchSize = 100
	}
	if c.Notify.ClaimLease <= 0 {
		c.Notify.ClaimLease = 2 * time.Minute
	}
	if c.Notify.QPS <= 0 {
		c.Notify.QPS = 20
	}
	if c.Notify.SecretCacheTTL <= 0 {
		c.Notify.SecretCacheTTL = 5 * time.Minute
	}
	if c.Notify.SecretCacheMax <= 0 {
		c.Notify.SecretCacheMax = 1024
	}

	if c.Heartbeat.StreamKey == "" {
		c.Heartbeat.StreamKey = "mpay:order:heartbeat"
	}
	if c.Heartbeat.MaxLen <= 0 {
		c.Heartbeat.MaxLen = 10000
	}
	if c.Realtime.WriteTimeout <= 0 {
		c.Realtime.WriteTimeout = 5 * time.Second
	}
	if c.Realtime.QueueSize <= 0 {
		c.Realtime.QueueSize = 256
	}
	if c.Limiter.Rate == "" {
		c.Limiter.Rate = "50-S"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "./logs"
	}
}
