package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
	"github.com/0xcro3dile/snapsolve/internal/domain/usecases"
	"github.com/0xcro3dile/snapsolve/internal/tui"
)

func newBrowseCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse stored entries in the terminal",
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

			uc := usecases.NewEntriesUseCase(store)
			return tui.Run(func() ([]entities.Entry, error) {
				return uc.Newest(ctx)
			})
		},
	}
}
