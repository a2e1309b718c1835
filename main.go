/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/labnorm/cmd"
	"github.com/humaidq/labnorm/logging"
)

func main() {
	logging.Init()

	app := &cli.Command{
		Name:  "labnorm",
		Usage: "Labnorm - Biomarker normalization engine",
		Commands: []*cli.Command{
			cmd.CmdNormalize,
			cmd.CmdServe,
			cmd.CmdMigrate,
			cmd.CmdCatalog,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logging.Logger(logging.SourceApp).Fatal(err)
	}
}
