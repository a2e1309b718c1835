/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchProcessor runs the pipeline over many rows. A row's outcome never
// affects its siblings.
type BatchProcessor struct {
	pipeline *Pipeline
	workers  int
}

// NewBatchProcessor builds a pipeline on store and wraps it in a processor.
func NewBatchProcessor(store Store, cfg Config) (*BatchProcessor, error) {
	pipeline, err := NewPipeline(store, cfg)
	if err != nil {
		return nil, err
	}

	return &BatchProcessor{pipeline: pipeline, workers: cfg.workers()}, nil
}

// Pipeline returns the per-row pipeline.
func (bp *BatchProcessor) Pipeline() *Pipeline {
	return bp.pipeline
}

type rowOutcome struct {
	record *NormalizedBiomarker
	err    error
}

// NormalizeBatch normalizes rows and sorts each into normalized, skipped or
// failed, keeping input order inside each bucket. It only returns an error
// when ctx ends before every row was processed.
func (bp *BatchProcessor) NormalizeBatch(ctx context.Context, rows []RawBiomarker, subject SubjectContext) (*BatchResult, error) {
	start := time.Now()
	outcomes := make([]rowOutcome, len(rows))

	g := new(errgroup.Group)
	g.SetLimit(bp.workers)

	for i := range rows {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = rowOutcome{err: err}
				return nil
			}

			outcomes[i] = bp.normalizeRow(ctx, i, rows[i], subject)

			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch of %d rows interrupted: %w", len(rows), err)
	}

	result := &BatchResult{
		Normalized: []NormalizedBiomarker{},
		Skipped:    []SkippedRow{},
		Failed:     []FailedRow{},
	}

	for i, o := range outcomes {
		switch {
		case o.err == nil:
			result.Normalized = append(result.Normalized, *o.record)
		case IsSkip(o.err):
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Row: rows[i], Reason: o.err.Error()})
		default:
			result.Failed = append(result.Failed, FailedRow{Index: i, Row: rows[i], Error: o.err.Error()})
		}
	}

	logger.Info("Normalized batch",
		"rows", len(rows),
		"normalized", len(result.Normalized),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
		"duration", time.Since(start),
	)

	return result, nil
}

// normalizeRow isolates one row, turning a panic into a failure.
func (bp *BatchProcessor) normalizeRow(ctx context.Context, index int, row RawBiomarker, subject SubjectContext) (out rowOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Row normalization panicked", "index", index, "name", row.NameRaw, "panic", r)
			out = rowOutcome{err: fmt.Errorf("internal error normalizing row: %v", r)}
		}
	}()

	record, err := bp.pipeline.Normalize(ctx, row, subject)
	if err != nil {
		if IsSkip(err) {
			logger.Debug("Row skipped", "index", index, "name", row.NameRaw, "reason", err)
		} else {
			logger.Warn("Row failed", "index", index, "name", row.NameRaw, "error", err)
		}

		return rowOutcome{err: err}
	}

	return rowOutcome{record: record}
}
