package main

import (
	"context"
	"time"

	"mpay-order-api/internal/channel/health"
	"mpay-order-api/internal/config"
	"mpay-order-api/internal/dal"
	"mpay-order-api/internal/dao"
	"mpay-order-api/internal/heartbeat"
	"mpay-order-api/internal/idgen"
	"mpay-order-api/internal/logger"
	"mpay-order-api/internal/notify"
	"mpay-order-api/internal/realtime"
	"mpay-order-api/internal/scheduler"
	"mpay-order-api/internal/service"
	"mpay-order-api/internal/system"
)

// app 进程内共享的组件
type app struct {
	orders   *dao.OrderDao
	secrets  *service.MerchantSecretService
	logs     *notify.LogService
	client   *notify.Client
	async    *notify.AsyncDispatcher
	alerter  notify.Alerter
	stream   *heartbeat.Stream
	events   health.Publisher // stream，开启熔断时附带通道成功率统计
	health   *health.Manager
	pusher   *realtime.Pusher
	sweeper  *scheduler.OrderScheduler
	retrying *scheduler.NotifyRetryScheduler
}

// bootstrap 读取配置并连接数据库与 Redis
func bootstrap() {
	config.Init(env)
	logger.Init(config.C.Log.Dir, config.C.Log.Level)
	dal.InitOrderDB()
	dal.InitRedis()
	idgen.Init(config.C.Order.SnowflakeNodeID)

	if config.C.Database.AutoMigrate {
		if err := dal.AutoMigrate(dal.OrderDB); err != nil {
			logger.L.Fatalf("[BOOT] 建表失败: %v", err)
		}
	}
}

func newApp() *app {
	c := config.C
	a := &app{orders: dao.NewOrderDao()}

	a.secrets = service.NewDefaultMerchantSecretService(c.Notify.SecretCacheMax, c.Notify.SecretCacheTTL)
	a.logs = notify.NewLogService(dao.NewNotifyLogDao(), notify.LogOptions{
		InlineAttempts: c.Notify.InlineAttempts,
		MaxRetries:     c.Notify.MaxRetries,
		ClaimLease:     c.Notify.ClaimLease,
	})
	// 告警群优先取 sys_config
	chatID := system.NewConfigSystem(dal.OrderDB, dal.RedisClient).
		Value(context.Background(), system.KeyTelegramGroup, c.Telegram.ChatID)
	if tg := notify.NewTelegramAlerter(chatID); tg != nil {
		a.alerter = tg
	}
	a.client = notify.NewClient(notify.NewHTTPSender(c.Notify.Timeout), a.secrets, a.logs, notify.ClientOptions{
		InlineAttempts: c.Notify.InlineAttempts,
		Backoff:        c.Notify.Backoff,
		Alerter:        a.alerter,
	})
	a.async = notify.NewAsyncDispatcher(a.client)

	a.stream = heartbeat.NewStream(dal.RedisClient, c.Heartbeat.StreamKey, c.Heartbeat.MaxLen)
	a.events = a.stream
	if c.Channel.HealthThreshold > 0 {
		a.health = health.NewManager(dal.RedisClient, health.NewStrategy(c.Channel.HealthStrategy),
			c.Channel.HealthThreshold, c.Channel.HealthTripTTL)
		a.events = a.health.Wrap(a.stream)
	}
	a.pusher = realtime.NewPusher(realtime.NewRegistry(), c.Realtime.QueueSize)

	a.sweeper = scheduler.NewOrderScheduler(a.orders, a.events, a.pusher,
		time.Duration(c.Order.ExpireMinutes)*time.Minute, c.Order.SweepInterval)
	a.retrying = scheduler.NewNotifyRetryScheduler(a.logs, a.orders, a.client, scheduler.NotifyRetryOptions{
		Interval:  c.Notify.ScanInterval,
		BatchSize: c.Notify.BatchSize,
		Timeout:   c.Notify.Timeout,
		QPS:       c.Notify.QPS,
		Alerter:   a.alerter,
	})
	return a
}
