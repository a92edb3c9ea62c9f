// Package app builds the long-lived process context: clients, tool set,
// agent loop and session manager.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/elee1766/moviefinder/src/agent"
	"github.com/elee1766/moviefinder/src/config"
	"github.com/elee1766/moviefinder/src/executor"
	"github.com/elee1766/moviefinder/src/memory"
	"github.com/elee1766/moviefinder/src/metrics"
	"github.com/elee1766/moviefinder/src/movietools"
	"github.com/elee1766/moviefinder/src/orclient"
	"github.com/elee1766/moviefinder/src/session"
	"github.com/elee1766/moviefinder/src/storage"
	"github.com/elee1766/moviefinder/src/tmdb"
)

// App represents the main application with all services
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	LLM      *orclient.Client
	Movies   *tmdb.Client
	DB       *storage.DB
	Toolbox  *agent.DefaultToolbox
	Loop     *executor.Loop
	Sessions *session.Manager
}

// New creates a new App instance with all services initialized. Missing
// credentials fail here, before anything is served.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}
	var closers []io.Closer
	fail := func(err error) (*App, error) {
		var result *multierror.Error
		result = multierror.Append(result, err)
		for _, c := range closers {
			if cerr := c.Close(); cerr != nil {
				result = multierror.Append(result, cerr)
			}
		}
		return nil, result.ErrorOrNil()
	}

	movies, err := NewMovieClient(cfg, logger)
	if err != nil {
		return fail(err)
	}
	a.Movies = movies
	closers = append(closers, movies)

	a.LLM = orclient.NewClient(orclient.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Logger:     logger,
		Timeout:    cfg.LLM.Timeout.Std(),
		RetryCount: cfg.LLM.MaxRetries,
		RetryDelay: cfg.LLM.RetryDelay.Std(),
		SiteURL:    cfg.LLM.SiteURL,
		SiteName:   cfg.LLM.SiteName,
	})
	closers = append(closers, a.LLM)

	model, err := a.LLM.Model(ctx, cfg.LLM.Model)
	if err != nil {
		return fail(fmt.Errorf("configuration: %w", err))
	}

	var store memory.Store = memory.NewInMemoryStore()
	if cfg.Storage.Driver == config.StorageSQLite {
		db, err := OpenDatabase(cfg.Storage.Path)
		if err != nil {
			return fail(err)
		}
		a.DB = db
		closers = append(closers, db)
		store = memory.NewSQLStore(db)
	}

	tb, err := NewToolbox(cfg, movies, logger)
	if err != nil {
		return fail(err)
	}
	tb.RegisterMiddleware(agent.ObserverMiddleware(a.Metrics))
	if a.DB != nil {
		tb.RegisterMiddleware(agent.RecordingMiddleware(a.DB, logger))
	}
	a.Toolbox = tb

	var compactor memory.Compactor
	if cfg.Agent.HistoryWindow > 0 {
		compactor = memory.SlidingWindow(cfg.Agent.HistoryWindow)
	}

	a.Loop, err = executor.New(executor.Config{
		Model:        model,
		Toolbox:      tb,
		SystemPrompt: cfg.Agent.SystemPrompt,
		MaxSteps:     cfg.Agent.MaxSteps,
		MaxTokens:    cfg.Agent.MaxTokens,
		Temperature:  cfg.Agent.Temperature,
		Compactor:    compactor,
		Observer:     a.Metrics,
		Logger:       logger,
	})
	if err != nil {
		return fail(err)
	}

	a.Sessions = session.NewManager(session.Config{
		Runner:  a.Loop,
		Store:   store,
		Closers: closers,
		Tracker: a.Metrics,
		Logger:  logger,
	})

	logger.Info("application initialized",
		"model", model.ModelID(),
		"storage", cfg.Storage.Driver,
		"tools", len(tb.Tools()),
		"max_steps", a.Loop.MaxSteps(),
	)
	return a, nil
}

// Close shuts down the session manager, which releases every client.
func (a *App) Close() error {
	if a == nil || a.Sessions == nil {
		return nil
	}
	return a.Sessions.Close()
}

// NewMovieClient builds the movie provider client from cfg.
func NewMovieClient(cfg *config.Config, logger *slog.Logger) (*tmdb.Client, error) {
	movies, err := tmdb.New(tmdb.Config{
		APIKey:  cfg.Provider.APIKey,
		BaseURL: cfg.Provider.BaseURL,
		Timeout: cfg.Provider.Timeout.Std(),
		Logger:  logger,
	})
	if errors.Is(err, tmdb.ErrNoAPIKey) {
		return nil, config.ErrMissingProviderKey
	}
	return movies, err
}

// NewToolbox builds the movie tool set, applying the tools section of cfg,
// with logging middleware installed.
func NewToolbox(cfg *config.Config, provider movietools.Provider, logger *slog.Logger) (*agent.DefaultToolbox, error) {
	overrides := make(map[string]movietools.Override, len(cfg.Tools))
	for name, tc := range cfg.Tools {
		overrides[name] = movietools.Override{Disabled: tc.Disabled, Description: tc.Description}
	}

	tools, err := movietools.NewTools(movietools.NewAdapter(provider, logger), overrides)
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	tb, err := movietools.NewToolbox(tools)
	if err != nil {
		return nil, err
	}
	tb.RegisterMiddleware(agent.LoggingMiddleware(logger))
	return tb, nil
}

// OpenDatabase opens the sqlite database at path, creating its directory.
func OpenDatabase(path string) (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return db, nil
}
