// Package main is the entry point for the meshvault catalog viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshvault/internal/app"
	"github.com/Faultbox/meshvault/internal/config"
	"github.com/Faultbox/meshvault/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	models := flag.Args()
	if len(models) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: meshvault [flags] model [model...]")
		fmt.Fprintln(os.Stderr, "Models may be local paths or http(s) URLs.")
		os.Exit(2)
	}

	logger.Info("=== meshvault viewer ===", zap.Int("models", len(models)))

	a, err := app.New(cfg, models)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
