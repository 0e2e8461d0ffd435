package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/snapsolve/internal/metrics"
)

func newServeCmd(configPath *string) *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored entries and the dashboard without capturing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, o)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			srv, stopWatch := newServer(ctx, cfg, store, metrics.NewMetrics())
			defer stopWatch()

			log.Printf("[INFO] Dashboard: http://localhost%s/dashboard/", cfg.Listen)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&o.listen, "listen", "", "server listen address (overrides config)")
	return cmd
}
