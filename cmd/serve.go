package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mpay-order-api/internal/config"
	"mpay-order-api/internal/dal"
	"mpay-order-api/internal/dao"
	"mpay-order-api/internal/handler"
	"mpay-order-api/internal/logger"
	"mpay-order-api/internal/middleware"
	"mpay-order-api/internal/mq"
	"mpay-order-api/internal/realtime"
	"mpay-order-api/internal/service"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务和后台调度",
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrap()
			defer dal.CloseRedis()
			return serve()
		},
	}
}

func serve() error {
	c := config.C
	a := newApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 有 MQ 时支付成功事件走 order.paid，发布失败退回进程内通知
	var dispatcher service.PaidDispatcher = a.async
	if dal.InitRabbitMQ() {
		defer dal.CloseRabbitMQ()
		dispatcher = mq.NewPaidDispatcher(mq.NewPublisher(c.RabbitMQ.Exchange), a.async)
		consumer := mq.NewPaidConsumer(a.orders, a.client)
		go func() {
			// 消费中断时消息留在持久队列里，重启后继续
			if err := consumer.Start(ctx); err != nil {
				logger.L.Errorf("[MQ] order.paid 消费者退出: %v", err)
			}
		}()
	}

	selector := service.NewChannelSelector(dao.NewMainDao(), c.Channel.Policy, dal.RedisClient)
	if a.health != nil {
		selector.UseHealth(a.health)
	}
	allocator := service.NewIncrementalPriceAllocator(a.orders)
	create := service.NewPublicOrderService(a.orders, selector, allocator, a.events, service.CreateOptions{
		PayTimeout:      time.Duration(c.Order.PayTimeoutSec) * time.Second,
		PersistAttempts: c.Order.PersistAttempts,
		CashierURL:      c.Server.CashierURL,
	})
	match := service.NewDefaultOrderMatchService(dal.RedisClient, c.Order.RecordDedupTTL, a.events, dispatcher, a.pusher)
	admin := service.NewAdminOrderService(a.orders, a.client, a.logs, a.sweeper, a.events, dispatcher, a.pusher)

	router := handler.NewRouter(handler.RouterDeps{
		Orders:         handler.NewOrderHandler(create, service.NewCashierService(a.orders)),
		Match:          handler.NewMatchHandler(match),
		Heartbeat:      handler.NewHeartbeatHandler(a.stream),
		Socket:         handler.NewPaymentSocketHandler(realtime.NewHub(a.pusher, c.Realtime.WriteTimeout), a.pusher, a.orders),
		Admin:          handler.NewAdminHandler(admin, a.logs),
		SignVerify:     middleware.SignVerify(a.secrets, c.Order.RequireSignature, a.alerter),
		InternalToken:  c.Internal.AuthToken,
		RateLimit:      c.Limiter.Rate,
		Mode:           c.Server.Mode,
		TrustedProxies: c.Server.TrustedProxies,
	})

	go a.pusher.Run(ctx)
	go a.sweeper.Run(ctx)
	go a.retrying.Run(ctx)

	srv := &http.Server{Addr: ":" + c.Server.Port, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.L.Infof("[BOOT] 🚀 listening %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L.Info("[BOOT] 收到退出信号，开始关闭")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L.Errorf("[BOOT] HTTP 关闭失败: %v", err)
	}
	// 等待进行中的商户通知，失败的已经写进通知日志
	a.async.Wait()
	logger.L.Info("[BOOT] 已退出")
	return nil
}
