package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elee1766/moviefinder/src/app"
	"github.com/elee1766/moviefinder/src/server"
)

// ServeCmd runs the HTTP API
type ServeCmd struct {
	Host            string        `help:"Listen host (overrides config)"`
	Port            int           `short:"p" env:"PORT" help:"Listen port (overrides config)"`
	ShutdownTimeout time.Duration `default:"30s" help:"Grace period for in-flight requests"`
}

func (s *ServeCmd) Run(cli *CLI) error {
	cfg, logger, err := setup(cli)
	if err != nil {
		return err
	}
	if s.Host != "" {
		cfg.Server.Host = s.Host
	}
	if s.Port > 0 {
		cfg.Server.Port = s.Port
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr:           cfg.Server.Addr(),
		RequestTimeout: cfg.Server.RequestTimeout.Std(),
		Chatter:        a.Sessions,
		Observer:       a.Metrics,
		Metrics:        a.Metrics.Handler(),
		Logger:         logger,
	})
	if err != nil {
		_ = a.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if cerr := a.Close(); cerr != nil {
		logger.Error("shutdown failed", "error", cerr)
		if err == nil {
			err = cerr
		}
	}
	logger.Info("server stopped")
	return err
}
