package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "snapsolve",
		Short: "snapsolve captures the screen on an interval and has a local model solve what it sees",
		Long: `snapsolve takes a screenshot every interval, sends it to a local Ollama
vision model (optionally followed by a coding model), appends the answer to a
JSON document and serves the results to a web dashboard.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default snapsolve.yaml if present)")

	root.AddCommand(
		newRunCmd(&configPath),
		newCaptureCmd(&configPath),
		newServeCmd(&configPath),
		newListCmd(&configPath),
		newShowCmd(&configPath),
		newBrowseCmd(&configPath),
		newModelsCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
