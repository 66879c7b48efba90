package main

import (
	"os"

	"github.com/spf13/cobra"
)

var env string

func main() {
	root := &cobra.Command{
		Use:           "mpay-order-api",
		Short:         "mpay 订单对账与通知服务",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&env, "env", envOr("APP_ENV", "dev"), "配置环境，对应 config/config.<env>.yaml")

	root.AddCommand(serveCmd(), retryNotifyCmd(), sweepOrdersCmd(), migrateCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
