package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/elee1766/moviefinder/src/app"
	"github.com/elee1766/moviefinder/src/storage"
)

// MigrateCmd manages database migrations
type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" default:"1" help:"Run pending migrations"`
	Status MigrateStatusCmd `cmd:"" help:"Show migration status"`
}

// MigrateUpCmd runs pending migrations
type MigrateUpCmd struct{}

// Run executes the migrate up command
func (c *MigrateUpCmd) Run(cli *CLI) error {
	cfg, _, err := setup(cli)
	if err != nil {
		return err
	}

	db, err := app.OpenDatabase(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := db.AppliedVersions(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Database %s is at version %d\n", db.Path(), latest(applied))
	return nil
}

// MigrateStatusCmd shows migration status
type MigrateStatusCmd struct{}

// Run executes the migrate status command
func (c *MigrateStatusCmd) Run(cli *CLI) error {
	cfg, _, err := setup(cli)
	if err != nil {
		return err
	}

	db, err := app.OpenDatabase(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := db.AppliedVersions(context.Background())
	if err != nil {
		return err
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tSTATUS")
	for _, m := range storage.Migrations() {
		status := "pending"
		if done[m.Version] {
			status = "applied"
		}
		fmt.Fprintf(tw, "%03d\t%s\t%s\n", m.Version, m.Name, status)
	}
	return tw.Flush()
}

func latest(versions []int) int {
	highest := 0
	for _, v := range versions {
		if v > highest {
			highest = v
		}
	}
	return highest
}
