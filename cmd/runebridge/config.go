package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/runebridge/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or check configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "defaults",
		Short: "Print the built-in configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := toml.NewEncoder(os.Stdout)
			return enc.Encode(config.Default())
		},
	})

	var path string
	check := &cobra.Command{
		Use:   "check",
		Short: "Load the configuration with environment overrides and validate it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{Path: path})
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Configuration OK.")
			return toml.NewEncoder(os.Stdout).Encode(cfg)
		},
	}
	check.Flags().StringVarP(&path, "config", "c", "", "Path to configuration file")
	cmd.AddCommand(check)
	return cmd
}
