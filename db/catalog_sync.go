/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/humaidq/labnorm/biomarker"
)

// SyncStats counts the rows written by SyncCatalog.
type SyncStats struct {
	Biomarkers  int
	Synonyms    int
	Conversions int
	Profiles    int
	Ranges      int
}

// SyncCatalog upserts a catalog seed into the database in one transaction.
// Existing rows are updated in place, so range insertion order is kept.
func SyncCatalog(ctx context.Context, seed biomarker.Seed) error {
	_, err := SyncCatalogStats(ctx, seed)
	return err
}

// SyncCatalogStats is SyncCatalog returning how many rows were written.
func SyncCatalogStats(ctx context.Context, seed biomarker.Seed) (SyncStats, error) {
	var stats SyncStats

	if pool == nil {
		return stats, ErrDatabaseConnectionNotInitialized
	}

	logger.Infof("Syncing catalog: %d biomarkers, %d profiles, %d ranges",
		len(seed.Biomarkers), len(seed.Profiles), len(seed.Ranges))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("Failed to roll back catalog sync", "error", err)
		}
	}()

	for _, b := range seed.Biomarkers {
		_, err := tx.Exec(ctx, `
			INSERT INTO biomarkers (id, name, category, canonical_unit, preferred_unit, display_precision,
				global_default_ref_min, global_default_ref_max)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				canonical_unit = EXCLUDED.canonical_unit,
				preferred_unit = EXCLUDED.preferred_unit,
				display_precision = EXCLUDED.display_precision,
				global_default_ref_min = EXCLUDED.global_default_ref_min,
				global_default_ref_max = EXCLUDED.global_default_ref_max,
				updated_at = now()
		`,
			b.ID, b.Name, b.Category, b.CanonicalUnit, b.PreferredUnit, b.DisplayPrecision,
			b.GlobalDefaultMin, b.GlobalDefaultMax,
		)
		if err != nil {
			return stats, fmt.Errorf("failed to sync biomarker %s: %w", b.Name, err)
		}

		stats.Biomarkers++
	}

	for _, syn := range seed.Synonyms {
		_, err := tx.Exec(ctx, `
			INSERT INTO biomarker_synonyms (biomarker_id, label, exact)
			VALUES ($1, $2, $3)
			ON CONFLICT (label) DO UPDATE SET
				biomarker_id = EXCLUDED.biomarker_id,
				exact = EXCLUDED.exact
		`, syn.BiomarkerID, syn.Label, syn.Exact)
		if err != nil {
			return stats, fmt.Errorf("failed to sync synonym %s: %w", syn.Label, err)
		}

		stats.Synonyms++
	}

	for _, c := range seed.Conversions {
		_, err := tx.Exec(ctx, `
			INSERT INTO unit_conversions (biomarker_id, from_unit, to_unit, conversion_type, multiplier, offset_value)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (biomarker_id, from_unit, to_unit) DO UPDATE SET
				conversion_type = EXCLUDED.conversion_type,
				multiplier = EXCLUDED.multiplier,
				offset_value = EXCLUDED.offset_value
		`, c.BiomarkerID, c.FromUnit, c.ToUnit, string(c.Type), c.Multiplier, c.Offset)
		if err != nil {
			return stats, fmt.Errorf("failed to sync conversion %s -> %s: %w", c.FromUnit, c.ToUnit, err)
		}

		stats.Conversions++
	}

	for _, p := range seed.Profiles {
		_, err := tx.Exec(ctx, `
			INSERT INTO reference_profiles (id, name, country_code, lab_name, is_default)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				country_code = EXCLUDED.country_code,
				lab_name = EXCLUDED.lab_name,
				is_default = EXCLUDED.is_default
		`, p.ID, p.Name, p.CountryCode, p.LabName, p.IsDefault)
		if err != nil {
			return stats, fmt.Errorf("failed to sync profile %s: %w", p.Name, err)
		}

		stats.Profiles++
	}

	for _, r := range seed.Ranges {
		_, err := tx.Exec(ctx, `
			INSERT INTO reference_profile_ranges (profile_id, biomarker_id, unit, sex, age_min_y, age_max_y,
				low, high, critical_low, critical_high, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT ON CONSTRAINT reference_profile_ranges_stratum DO UPDATE SET
				low = EXCLUDED.low,
				high = EXCLUDED.high,
				critical_low = EXCLUDED.critical_low,
				critical_high = EXCLUDED.critical_high,
				notes = EXCLUDED.notes,
				updated_at = now()
		`,
			r.ProfileID, r.BiomarkerID, r.Unit, string(r.Sex), r.AgeMinYears, r.AgeMaxYears,
			r.Low, r.High, r.CriticalLow, r.CriticalHigh, r.Notes,
		)
		if err != nil {
			return stats, fmt.Errorf("failed to sync range %s/%s: %w", r.Unit, r.Sex, err)
		}

		stats.Ranges++
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("failed to commit catalog sync: %w", err)
	}

	logger.Infof("Successfully synced catalog: %d biomarkers, %d synonyms, %d conversions, %d profiles, %d ranges",
		stats.Biomarkers, stats.Synonyms, stats.Conversions, stats.Profiles, stats.Ranges)

	return stats, nil
}
