package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"themeforge/internal/auth"
	"themeforge/internal/services"
	"themeforge/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	// The Forge client serves two roles: theme operations through the gate
	// and session operations (refresh, logout) through its plain client. The
	// lifecycle needs the client for refresh and the gate needs the
	// lifecycle, so the gate is installed last.
	forge := services.NewForgeService(config.Credentials.Forge.BaseURL, nil, nil, logger)
	store := auth.NewStore()
	session := auth.NewSessionFile(sessionPath())
	lifecycle := auth.NewLifecycle(store, session, forge, logger)
	gate := auth.NewGate(lifecycle, auth.NavigatorFunc(func() {
		logger.Warn("session expired, run 'themeforge auth login' to reconnect")
	}), nil, logger)
	forge.SetGate(gate)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		Forge:      forge,
		Lifecycle:  lifecycle,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "themeforge",
		Usage:    "Generate, preview, and manage AI-assisted Shopify themes",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
