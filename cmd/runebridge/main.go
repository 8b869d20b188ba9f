// Package main is the entry point for runebridge, the terminal front end
// that mirrors a running engine's scene over a websocket.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:          "runebridge",
		Short:        "Terminal scene inspector for a websocket-attached engine",
		SilenceUsage: true,
	}
	root.Version = version + " (" + commit + ", " + date + ")"
	root.SetVersionTemplate("runebridge {{.Version}}\n")
	root.AddCommand(serveCmd())
	root.AddCommand(schemaCmd())
	root.AddCommand(journalCmd())
	root.AddCommand(configCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
