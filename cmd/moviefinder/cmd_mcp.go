package main

import (
	"os"

	"github.com/elee1766/moviefinder/src/app"
	"github.com/elee1766/moviefinder/src/mcpserver"
)

// MCPCmd serves the movie tools to MCP clients over stdio. Only the movie
// provider key is needed; no reasoning engine is involved.
type MCPCmd struct{}

func (m *MCPCmd) Run(cli *CLI) error {
	cfg, logger, err := setup(cli)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	movies, err := app.NewMovieClient(cfg, logger)
	if err != nil {
		return err
	}
	defer movies.Close()

	tb, err := app.NewToolbox(cfg, movies, logger)
	if err != nil {
		return err
	}

	srv, err := mcpserver.New("moviefinder", version, tb, logger)
	if err != nil {
		return err
	}
	return srv.Serve(ctx, os.Stdin, os.Stdout)
}
