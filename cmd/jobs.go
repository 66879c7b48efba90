package main

import (
	"fmt"

	"mpay-order-api/internal/config"
	"mpay-order-api/internal/dal"
	"mpay-order-api/internal/logger"

	"github.com/spf13/cobra"
)

func retryNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry-notify",
		Short: "执行一轮商户通知重试",
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrap()
			defer dal.CloseRedis()
			n, err := newApp().retrying.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			logger.L.Infof("[JOB] 本轮重试发送 %d 条", n)
			return nil
		},
	}
}

func sweepOrdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-orders",
		Short: "关闭超时未支付的订单",
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrap()
			defer dal.CloseRedis()
			n, err := newApp().sweeper.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			logger.L.Infof("[JOB] 本轮关闭 %d 笔订单", n)
			return nil
		},
	}
}

// migrateCmd 只建表，不需要 Redis
func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "同步表结构",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Init(env)
			dal.InitOrderDB()
			if err := dal.AutoMigrate(dal.OrderDB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("migrate ok")
			return nil
		},
	}
}

