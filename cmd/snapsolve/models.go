package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newModelsCmd(configPath *string) *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List local Ollama models and check the configured ones are pulled",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, o)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			client := newModelClient(cfg)
			models, err := client.ListModels(ctx)
			if err != nil {
				return fmt.Errorf("list models: %w", err)
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED")
			for _, m := range models {
				fmt.Fprintf(w, "%s\t%.1f GB\t%s\n", m.Name, float64(m.Size)/1e9, m.ModifiedAt.Format("2006-01-02"))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			missing, err := client.MissingModels(ctx)
			if err != nil {
				return err
			}
			for _, name := range missing {
				fmt.Fprintf(out, "\n[WARN] %s is not pulled; run: ollama pull %s\n", name, name)
			}
			if len(missing) == 0 {
				fmt.Fprintf(out, "\n[OK] %s mode models available\n", cfg.Mode)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&o.mode, "mode", "", "single or two_stage (overrides config)")
	return cmd
}
