/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/labnorm/biomarker"
	"github.com/humaidq/labnorm/routes"
)

var CmdNormalize = &cli.Command{
	Name:      "normalize",
	Usage:     "Normalize extracted lab rows read as JSON",
	ArgsUsage: "[rows.json]",
	Flags: append(engineFlags(),
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "file holding the rows (default stdin)",
		},
		&cli.StringFlag{
			Name:  "sex",
			Usage: "subject sex: male, female or empty",
		},
		&cli.IntFlag{
			Name:  "age",
			Usage: "subject age in whole years",
		},
		&cli.BoolFlag{
			Name:  "compact",
			Usage: "print JSON on one line",
		},
		&cli.BoolFlag{
			Name:  "fail-on-error",
			Usage: "exit non-zero when any row lands in the failed bucket",
		},
	),
	Action: normalize,
}

func normalize(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("input")
	if path == "" && cmd.Args().Len() > 0 {
		path = cmd.Args().First()
	}

	raw, err := readInput(path)
	if err != nil {
		return err
	}

	req, err := decodeInput(raw)
	if err != nil {
		return err
	}

	if err := applySubjectFlags(cmd, &req.Subject); err != nil {
		return err
	}

	eng, err := openEngine(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer eng.Close()

	batchCtx, cancel := batchContext(ctx, cmd)
	defer cancel()

	result, err := eng.processor.NormalizeBatch(batchCtx, req.Rows, req.Subject)
	if err != nil {
		return fmt.Errorf("failed to normalize rows: %w", err)
	}

	if err := writeResult(cmd.Root().Writer, result, !cmd.Bool("compact")); err != nil {
		return err
	}

	if cmd.Bool("fail-on-error") && len(result.Failed) > 0 {
		return fmt.Errorf("%w: %d of %d", errRowsFailed, len(result.Failed), result.Total())
	}

	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		return raw, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return raw, nil
}

// decodeInput accepts either a bare JSON array of rows or a request object
// with rows and subject.
func decodeInput(raw []byte) (*routes.NormalizeRequest, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errEmptyInput
	}

	if trimmed[0] == '[' {
		var rows []biomarker.RawBiomarker
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode rows: %w", err)
		}

		req := &routes.NormalizeRequest{Rows: rows}
		if err := routes.ValidateNormalizeRequest(req); err != nil {
			return nil, err
		}

		return req, nil
	}

	req, err := routes.DecodeNormalizeRequest(bytes.NewReader(trimmed))
	if err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}

	return req, nil
}

// applySubjectFlags lets explicitly set flags override the subject read from
// the input.
func applySubjectFlags(cmd *cli.Command, subject *biomarker.SubjectContext) error {
	if cmd.IsSet("sex") {
		subject.Sex = cmd.String("sex")
	}

	if cmd.IsSet("age") {
		age := int(cmd.Int("age"))
		if age < 0 || age > routes.MaxAgeYears {
			return fmt.Errorf("%w: %d", errInvalidAge, age)
		}

		subject.AgeYears = &age
	}

	if subject.ProfileName == "" {
		subject.ProfileName = cmd.String("profile")
	}

	return nil
}

func writeResult(w io.Writer, result *biomarker.BatchResult, indent bool) error {
	if w == nil {
		w = os.Stdout
	}

	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(routes.NormalizeResponse{BatchResult: result, RowCount: result.Total()}); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	return nil
}
