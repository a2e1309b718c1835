/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/labnorm/biomarker"
	"github.com/humaidq/labnorm/db"
)

var CmdCatalog = &cli.Command{
	Name:  "catalog",
	Usage: "Inspect or sync the biomarker catalog",
	Commands: []*cli.Command{
		{
			Name:  "sync",
			Usage: "Run migrations and upsert the built-in catalog into the database",
			Flags: []cli.Flag{
				databaseURLFlag(),
			},
			Action: catalogSync,
		},
		{
			Name:   "list",
			Usage:  "List the built-in biomarkers and their units",
			Action: catalogList,
		},
	},
}

func catalogSync(ctx context.Context, cmd *cli.Command) error {
	databaseURL := cmd.String("database-url")
	if databaseURL == "" {
		return errDatabaseURLRequired
	}

	if err := db.Init(ctx, databaseURL, db.DefaultOptions()); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.SyncSchema(ctx, databaseURL); err != nil {
		return fmt.Errorf("failed to sync catalog: %w", err)
	}

	return nil
}

func catalogList(_ context.Context, cmd *cli.Command) error {
	return writeCatalog(cmd.Root().Writer, biomarker.DefaultSeed())
}

func writeCatalog(w io.Writer, seed biomarker.Seed) error {
	synonyms := make(map[string]int)
	for _, syn := range seed.Synonyms {
		synonyms[syn.BiomarkerID.String()]++
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tUNIT\tDISPLAY\tSYNONYMS")

	for _, b := range seed.Biomarkers {
		display := b.CanonicalUnit
		if b.PreferredUnit != nil {
			display = *b.PreferredUnit
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", b.Name, b.Category, b.CanonicalUnit, display, synonyms[b.ID.String()])
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	return nil
}
