package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/runebridge/internal/app"
	"github.com/dshills/runebridge/internal/config"
	"github.com/dshills/runebridge/internal/logging"
)

type serveFlags struct {
	configPath string
	assetPath  string
	pageURL    string
	addr       string
	logLevel   string
}

func serveCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Open the inspector and wait for the engine to connect",
		Example: "  runebridge serve\n" +
			"  runebridge serve --config runebridge.toml --asset-path ./assets\n" +
			"  runebridge serve --page-url 'http://localhost:8080/?asset_path=/srv/assets'",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to configuration file (TOML or YAML)")
	cmd.Flags().StringVar(&f.assetPath, "asset-path", "", "Asset root sent to the engine before it starts")
	cmd.Flags().StringVar(&f.pageURL, "page-url", "", "Page URL whose asset_path query parameter sets the asset root")
	cmd.Flags().StringVar(&f.addr, "addr", "", "Listen address for the engine endpoint")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	return cmd
}

func runServe(ctx context.Context, f serveFlags) error {
	loadOpts := config.Options{Path: f.configPath}
	cfg, err := config.Load(loadOpts)
	if err != nil {
		return err
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.pageURL != "" {
		cfg.Bridge.PageURL = f.pageURL
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closeLog, err := openLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()
	logging.SetDefault(log)

	application, err := app.New(app.Options{
		Config:    cfg,
		Load:      loadOpts,
		AssetPath: f.assetPath,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

// openLogger writes to cfg.File, or discards when no file is set.
func openLogger(cfg config.Logging) (*logging.Logger, func(), error) {
	var out io.Writer = io.Discard
	closeFn := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}
	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Level),
		Output: out,
		Prefix: "runebridge",
	})
	return log, closeFn, nil
}
