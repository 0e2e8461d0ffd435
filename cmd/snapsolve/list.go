package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/snapsolve/internal/domain/usecases"
	"github.com/0xcro3dile/snapsolve/internal/tui"
)

func newListCmd(configPath *string) *cobra.Command {
	var (
		limit int
		width int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, overrides{})
			if err != nil {
				return err
			}

			ctx := context.Background()
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := usecases.NewEntriesUseCase(store).Newest(ctx)
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			fmt.Fprint(cmd.OutOrStdout(), tui.List(entries, width))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max entries to show (0 for all)")
	cmd.Flags().IntVar(&width, "width", 120, "line width")
	return cmd
}
