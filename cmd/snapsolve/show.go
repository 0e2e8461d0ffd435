package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
	"github.com/0xcro3dile/snapsolve/internal/domain/usecases"
	"github.com/0xcro3dile/snapsolve/internal/tui"
)

func newShowCmd(configPath *string) *cobra.Command {
	var (
		screenshot string
		plain      bool
		width      int
	)

	cmd := &cobra.Command{
		Use:   "show [timestamp]",
		Short: "Show one entry (the newest if no timestamp is given)",
		Args:  cobra.MaximumNArgs(1),
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

			var entry entities.Entry
			if len(args) == 0 {
				entries, err := uc.Newest(ctx)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					return errors.New("no entries stored yet")
				}
				entry = entries[0]
			} else {
				ts, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid timestamp %q", args[0])
				}
				var ok bool
				entry, ok, err = uc.Find(ctx, ts, screenshot)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no entry with timestamp %d", ts)
				}
			}

			out := tui.Render(entry, width)
			if plain {
				out = tui.Plain(entry)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&screenshot, "screenshot", "", "screenshot filename, for entries sharing a timestamp")
	cmd.Flags().BoolVar(&plain, "plain", false, "plain text without markdown styling")
	cmd.Flags().IntVar(&width, "width", 100, "wrap width")
	return cmd
}
