package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/snapsolve/internal/metrics"
)

func newRunCmd(configPath *string) *cobra.Command {
	var (
		o        overrides
		noServer bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the capture loop and the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, o)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			m := metrics.NewMetrics()
			loop, err := newLoop(cfg, store, m)
			if err != nil {
				return fmt.Errorf("init capture: %w", err)
			}
			checkModels(ctx, newModelClient(cfg))

			srvErr := make(chan error, 1)
			if noServer {
				srvErr <- nil
			} else {
				srv, stopWatch := newServer(ctx, cfg, store, m)
				defer stopWatch()
				go func() {
					err := srv.Start(ctx)
					if err != nil {
						log.Printf("[ERROR] server: %v", err)
					}
					srvErr <- err
					cancel()
				}()
				log.Printf("[INFO] Dashboard: http://localhost%s/dashboard/", cfg.Listen)
			}

			if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return <-srvErr
		},
	}

	cmd.Flags().DurationVar(&o.interval, "interval", 0, "time between captures (overrides config)")
	cmd.Flags().StringVar(&o.mode, "mode", "", "single or two_stage (overrides config)")
	cmd.Flags().StringVar(&o.listen, "listen", "", "server listen address (overrides config)")
	cmd.Flags().BoolVar(&noServer, "no-server", false, "only run the capture loop")
	return cmd
}
