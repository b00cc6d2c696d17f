// sprtool is a CLI utility for inspecting and converting mobile sprite archives.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/mobispr/internal/assets"
	"github.com/Faultbox/mobispr/internal/config"
	"github.com/Faultbox/mobispr/internal/logger"
	"github.com/Faultbox/mobispr/pkg/formats"
)

const (
	cfgKey     = "config"
	managerKey = "assets"
)

func main() {
	app := &cli.App{
		Name:    "sprtool",
		Usage:   "mobile sprite archive utility",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				EnvVars: []string{"SPRTOOL_CONFIG"},
				Usage:   "path to config file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.IntFlag{
				Name:  "scale",
				Usage: "integer upscale factor (overrides config)",
			},
			&cli.IntFlag{
				Name:  "palette",
				Usage: "palette index used for exports (overrides config)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "image format: png or bmp (overrides config)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "default output directory (overrides config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "parallel entries for export-all (overrides config)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "also write logs to this file",
			},
		},
		Before: setup,
		After: func(c *cli.Context) error {
			if mgr, ok := c.App.Metadata[managerKey].(*assets.Manager); ok {
				mgr.Close()
			}
			logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "Show archive entries and sprite summaries",
				ArgsUsage: "ARCHIVE",
				Action:    cmdInfo,
			},
			{
				Name:      "list",
				Aliases:   []string{"ls"},
				Usage:     "Dump the tables of one sprite entry",
				ArgsUsage: "ARCHIVE ENTRY",
				Action:    cmdList,
			},
			{
				Name:      "extract",
				Aliases:   []string{"x"},
				Usage:     "Write the raw bytes of one entry",
				ArgsUsage: "ARCHIVE ENTRY [OUT]",
				Action:    cmdExtract,
			},
			{
				Name:      "pack",
				Usage:     "Build an archive from files, one entry each",
				ArgsUsage: "OUT FILE...",
				Action:    cmdPack,
			},
			{
				Name:      "export",
				Usage:     "Export every tile of one sprite entry as images",
				ArgsUsage: "ARCHIVE ENTRY [OUT_DIR]",
				Action:    cmdExport,
			},
			{
				Name:      "frames",
				Usage:     "Render composite poses and animation frames of one sprite entry",
				ArgsUsage: "ARCHIVE ENTRY [OUT_DIR]",
				Action:    cmdFrames,
			},
			{
				Name:      "export-all",
				Usage:     "Export tiles and poses of every sprite entry in parallel",
				ArgsUsage: "ARCHIVE [OUT_DIR]",
				Action:    cmdExportAll,
			},
			{
				Name:  "config",
				Usage: "Inspect or write the effective configuration",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the effective configuration as YAML",
						Action: cmdConfigShow,
					},
					{
						Name:      "init",
						Usage:     "Write the effective configuration to PATH or the user config dir",
						ArgsUsage: "[PATH]",
						Action:    cmdConfigInit,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and initializes logging before any command runs.
func setup(c *cli.Context) error {
	o := config.NoOverrides()
	o.ConfigPath = c.String("config")
	o.Debug = c.Bool("debug")
	o.Scale = c.Int("scale")
	if c.IsSet("palette") {
		o.Palette = c.Int("palette")
	}
	o.Format = c.String("format")
	o.OutputDir = c.String("out")
	o.Workers = c.Int("workers")
	o.LogFile = c.String("log-file")

	cfg, err := config.Load(o)
	if err != nil {
		return cli.Exit(err, 1)
	}

	l := cfg.Logging
	fileCfg := logger.FileConfig{}
	if l.LogFile != "" {
		fileCfg = logger.FileConfig{
			Path:       l.LogFile,
			MaxSizeMB:  l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			MaxAgeDays: l.MaxAgeDays,
			Compress:   l.Compress,
		}
	}
	if err := logger.InitWithFileConfig(l.Level, fileCfg, os.Stderr); err != nil {
		return cli.Exit(fmt.Errorf("initializing logger: %w", err), 1)
	}

	logger.Debug("configuration loaded",
		zap.Int("scale", cfg.Decode.Scale),
		zap.Int("palette", cfg.Decode.Palette),
		zap.String("format", cfg.Export.Format),
		zap.Int("workers", cfg.Export.Workers))

	mgr, err := assets.NewManager(cfg.Decode.SpriteCache,
		formats.WithScale(cfg.Decode.Scale),
		formats.WithCacheSize(cfg.Decode.CacheSize))
	if err != nil {
		return cli.Exit(err, 1)
	}

	c.App.Metadata = map[string]interface{}{
		cfgKey:     cfg,
		managerKey: mgr,
	}
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[cfgKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

func managerFrom(c *cli.Context) *assets.Manager {
	return c.App.Metadata[managerKey].(*assets.Manager)
}
