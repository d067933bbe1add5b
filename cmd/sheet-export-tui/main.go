package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/logging"
	"github.com/handiism/sheet-exporter/internal/snapshot"
	"github.com/handiism/sheet-exporter/internal/tui"
)

func main() {
	var (
		configFlag = flag.String("config", "", "Path to config file")
		modelFlag  = flag.String("model", "", "Path to the model snapshot (YAML)")
	)
	flag.Parse()

	if err := run(*configFlag, *modelFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgFile, modelPath string) error {
	cfg, err := config.LoadApp(cfgFile, nil)
	if err != nil {
		return err
	}
	if modelPath != "" {
		cfg.Model = modelPath
	}
	if cfg.Model == "" {
		fmt.Println("Sheet Export - batch export of model sheets")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  sheet-export-tui -model <snapshot.yaml>")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// The screen belongs to the TUI: logs go to a file.
	logger, err := logging.ToFile(filepath.Join(cfg.DataDir, "sheet-export.log"), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := config.Open(cfg.Settings, config.WithLogger(logger))
	if err != nil {
		return err
	}
	host, err := snapshot.Open(cfg.Model, snapshot.WithLogger(logger))
	if err != nil {
		return err
	}

	return tui.Run(tui.Options{Provider: host, Store: store, Logger: logger})
}
