/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/humaidq/labnorm/biomarker"
)

// CatalogStore serves the biomarker catalog from PostgreSQL.
type CatalogStore struct {
	pool *pgxpool.Pool
}

var (
	_ biomarker.Store       = (*CatalogStore)(nil)
	_ biomarker.LabelLister = (*CatalogStore)(nil)
)

// NewCatalogStore returns a store backed by the given pool, or by the package
// pool when nil.
func NewCatalogStore(p *pgxpool.Pool) (*CatalogStore, error) {
	if p == nil {
		p = pool
	}

	if p == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	return &CatalogStore{pool: p}, nil
}

const biomarkerColumns = `id, name, category, canonical_unit, preferred_unit, display_precision,
	global_default_ref_min, global_default_ref_max`

func scanBiomarker(row pgx.Row) (*biomarker.Biomarker, error) {
	var b biomarker.Biomarker

	err := row.Scan(
		&b.ID, &b.Name, &b.Category, &b.CanonicalUnit, &b.PreferredUnit,
		&b.DisplayPrecision, &b.GlobalDefaultMin, &b.GlobalDefaultMax,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil //nolint:nilnil // Not found is not an error.
	}

	if err != nil {
		return nil, err
	}

	return &b, nil
}

// FindBiomarkerByName implements biomarker.Store.
func (s *CatalogStore) FindBiomarkerByName(ctx context.Context, name string, fold bool) (*biomarker.Biomarker, error) {
	query := `SELECT ` + biomarkerColumns + ` FROM biomarkers WHERE name = $1`
	if fold {
		query = `SELECT ` + biomarkerColumns + ` FROM biomarkers WHERE lower(name) = lower($1) ORDER BY name LIMIT 1`
	}

	b, err := scanBiomarker(s.pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to find biomarker %q: %w", name, err)
	}

	return b, nil
}

// FindSynonym implements biomarker.Store.
func (s *CatalogStore) FindSynonym(ctx context.Context, label string, fold bool) (*biomarker.Synonym, error) {
	query := `SELECT biomarker_id, label, exact FROM biomarker_synonyms WHERE label = $1`
	if fold {
		query = `
			SELECT biomarker_id, label, exact
			FROM biomarker_synonyms
			WHERE lower(label) = lower($1) AND NOT exact
			ORDER BY id
			LIMIT 1
		`
	}

	var syn biomarker.Synonym

	err := s.pool.QueryRow(ctx, query, label).Scan(&syn.BiomarkerID, &syn.Label, &syn.Exact)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil //nolint:nilnil // Not found is not an error.
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find synonym %q: %w", label, err)
	}

	return &syn, nil
}

// GetBiomarker implements biomarker.Store.
func (s *CatalogStore) GetBiomarker(ctx context.Context, id uuid.UUID) (*biomarker.Biomarker, error) {
	query := `SELECT ` + biomarkerColumns + ` FROM biomarkers WHERE id = $1`

	b, err := scanBiomarker(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get biomarker %s: %w", id, err)
	}

	return b, nil
}

// FindConversion implements biomarker.Store.
func (s *CatalogStore) FindConversion(ctx context.Context, biomarkerID uuid.UUID, fromUnit, toUnit string) (*biomarker.UnitConversion, error) {
	query := `
		SELECT biomarker_id, from_unit, to_unit, conversion_type, multiplier, offset_value
		FROM unit_conversions
		WHERE biomarker_id = $1
		  AND lower(from_unit) = lower(btrim($2))
		  AND lower(to_unit) = lower(btrim($3))
		ORDER BY id
		LIMIT 1
	`

	var (
		conv     biomarker.UnitConversion
		convType string
	)

	err := s.pool.QueryRow(ctx, query, biomarkerID, fromUnit, toUnit).Scan(
		&conv.BiomarkerID, &conv.FromUnit, &conv.ToUnit, &convType, &conv.Multiplier, &conv.Offset,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil //nolint:nilnil // Not found is not an error.
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find conversion %s -> %s: %w", fromUnit, toUnit, err)
	}

	conv.Type = biomarker.ConversionType(convType)

	return &conv, nil
}

// FindProfileByName implements biomarker.Store.
func (s *CatalogStore) FindProfileByName(ctx context.Context, name string) (*biomarker.ReferenceProfile, error) {
	query := `SELECT id, name, country_code, lab_name, is_default FROM reference_profiles WHERE name = $1`

	var p biomarker.ReferenceProfile

	err := s.pool.QueryRow(ctx, query, name).Scan(&p.ID, &p.Name, &p.CountryCode, &p.LabName, &p.IsDefault)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil //nolint:nilnil // Not found is not an error.
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find profile %q: %w", name, err)
	}

	return &p, nil
}

// FindProfileRanges implements biomarker.Store.
func (s *CatalogStore) FindProfileRanges(ctx context.Context, profileID, biomarkerID uuid.UUID, unit string) ([]biomarker.ReferenceProfileRange, error) {
	query := `
		SELECT profile_id, biomarker_id, unit, sex, age_min_y, age_max_y,
		       low, high, critical_low, critical_high, notes
		FROM reference_profile_ranges
		WHERE profile_id = $1 AND biomarker_id = $2 AND lower(unit) = lower(btrim($3))
		ORDER BY seq
	`

	rows, err := s.pool.Query(ctx, query, profileID, biomarkerID, unit)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile ranges: %w", err)
	}
	defer rows.Close()

	var ranges []biomarker.ReferenceProfileRange

	for rows.Next() {
		var (
			r   biomarker.ReferenceProfileRange
			sex string
		)

		if err := rows.Scan(
			&r.ProfileID, &r.BiomarkerID, &r.Unit, &sex, &r.AgeMinYears, &r.AgeMaxYears,
			&r.Low, &r.High, &r.CriticalLow, &r.CriticalHigh, &r.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan profile range: %w", err)
		}

		r.Sex = biomarker.Sex(sex)
		ranges = append(ranges, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile ranges: %w", err)
	}

	return ranges, nil
}

// ListMatchLabels implements biomarker.LabelLister.
func (s *CatalogStore) ListMatchLabels(ctx context.Context) ([]biomarker.MatchLabel, error) {
	query := `
		SELECT id, name, false FROM biomarkers
		UNION ALL
		SELECT biomarker_id, label, true FROM biomarker_synonyms WHERE NOT exact
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list match labels: %w", err)
	}
	defer rows.Close()

	var labels []biomarker.MatchLabel

	for rows.Next() {
		var l biomarker.MatchLabel
		if err := rows.Scan(&l.BiomarkerID, &l.Label, &l.Synonym); err != nil {
			return nil, fmt.Errorf("failed to scan match label: %w", err)
		}

		labels = append(labels, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match labels: %w", err)
	}

	return labels, nil
}
