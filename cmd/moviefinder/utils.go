package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/elee1766/moviefinder/src/config"
)

// loadConfig loads the configuration from the specified path or default
// locations, then applies CLI flags on top.
func loadConfig(cli *CLI) (*config.Config, error) {
	cfg, err := config.NewLoader(afero.NewOsFs()).Load(cli.Config)
	if err != nil {
		return nil, err
	}
	overrideConfigFromCLI(cfg, cli)
	if err := config.NewValidator().ValidateSettings(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overrideConfigFromCLI overrides configuration values with CLI flags
func overrideConfigFromCLI(cfg *config.Config, cli *CLI) {
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Logging.Format = cli.LogFormat
	}
	if cli.Model != "" {
		cfg.LLM.Model = cli.Model
	}
	if cli.MaxSteps > 0 {
		cfg.Agent.MaxSteps = cli.MaxSteps
	}
	if cli.Storage != "" {
		cfg.Storage.Driver = cli.Storage
	}
	if cli.DBPath != "" {
		cfg.Storage.Path = cli.DBPath
	}
}

// setup loads configuration and builds the logger every command starts with.
func setup(cli *CLI) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cli)
	if err != nil {
		return nil, nil, err
	}
	logger := createLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
