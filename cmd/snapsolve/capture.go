package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/snapsolve/internal/tui"
)

func newCaptureCmd(configPath *string) *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Run a single capture cycle and print the result",
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

			loop, err := newLoop(cfg, store, nil)
			if err != nil {
				return fmt.Errorf("init capture: %w", err)
			}

			entry, err := loop.RunCycle(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.Plain(entry))
			return nil
		},
	}

	cmd.Flags().StringVar(&o.mode, "mode", "", "single or two_stage (overrides config)")
	return cmd
}
