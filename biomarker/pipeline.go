/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Pipeline normalizes one raw row: parse, match, convert, resolve range.
type Pipeline struct {
	store          Store
	catalog        *Catalog
	converter      *Converter
	resolver       *Resolver
	defaultProfile string
}

// NewPipeline wires the default components around store.
func NewPipeline(store Store, cfg Config) (*Pipeline, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	strategies := DefaultStrategies(store)

	if cfg.FuzzyMatching {
		lister, ok := store.(LabelLister)
		if !ok {
			return nil, fmt.Errorf("fuzzy matching requires a store that lists labels, got %T", store)
		}

		strategies = append(strategies, NewFuzzyMatcher(lister, cfg.FuzzyMinScore))
	}

	defaultProfile := cfg.DefaultProfile
	if defaultProfile == "" {
		defaultProfile = DefaultProfileName
	}

	return &Pipeline{
		store:          store,
		catalog:        NewCatalog(strategies...),
		converter:      NewConverter(store),
		resolver:       NewResolver(store),
		defaultProfile: defaultProfile,
	}, nil
}

// Catalog returns the pipeline's name matcher.
func (p *Pipeline) Catalog() *Catalog {
	return p.catalog
}

// Normalize runs the pipeline for one row. Errors wrapping
// ErrUnrecognizedBiomarker are skips; any other error is a failure.
func (p *Pipeline) Normalize(ctx context.Context, raw RawBiomarker, subject SubjectContext) (*NormalizedBiomarker, error) {
	parsed, err := ParseValue(raw.ValueRaw)
	if err != nil {
		return nil, err
	}

	match, err := p.catalog.Resolve(ctx, raw.NameRaw)
	if err != nil {
		return nil, err
	}

	b := match.Biomarker
	if b == nil {
		b, err = p.store.GetBiomarker(ctx, match.BiomarkerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load biomarker %s: %w", match.BiomarkerID, err)
		}

		if b == nil {
			return nil, fmt.Errorf("%w: %s (matched %q)", ErrBiomarkerMissing, match.BiomarkerID, raw.NameRaw)
		}
	}

	out := &NormalizedBiomarker{
		BiomarkerName:   b.Name,
		BiomarkerID:     b.ID,
		Category:        b.Category,
		ValueRawString:  raw.ValueRaw,
		ValueRawNumeric: parsed.Value,
		UnitRaw:         raw.UnitRaw,
		UnitCanonical:   b.CanonicalUnit,
		Flags:           append([]Flag{}, parsed.Flags...),
		Warnings:        []string{},
		Context: NormalizationContext{
			MatchedSynonym: match.Synonym,
			MatchStrategy:  match.Strategy,
			ParseWarnings:  parsed.Warnings,
		},
	}

	out.Warnings = append(out.Warnings, parsed.Warnings...)
	if match.Warning != "" {
		out.Warnings = append(out.Warnings, match.Warning)
	}

	if raw.FlagRaw != nil {
		for _, f := range parseFlagRaw(*raw.FlagRaw) {
			out.Flags = addFlag(out.Flags, f)
		}
	}

	conv, err := p.converter.Convert(ctx, b.ID, parsed.Value, raw.UnitRaw, b.CanonicalUnit)
	if err != nil {
		return nil, err
	}

	out.ValueCanonical = conv.Value
	out.Context.ConversionApplied = conv.Applied
	out.Context.ConversionFormula = conv.Formula

	if conv.Warning != "" {
		out.Warnings = append(out.Warnings, conv.Warning)
	}

	if err := p.applyRange(ctx, out, b, subject, parsed.Bound); err != nil {
		return nil, err
	}

	if err := p.applyDisplay(ctx, out, b); err != nil {
		return nil, err
	}

	return out, nil
}

// applyRange resolves the reference range and flags out-of-range values. A
// reporting-limit bound is only compared on the side it can be trusted: a
// "<N" value is never flagged HIGH and a ">N" value never LOW.
func (p *Pipeline) applyRange(ctx context.Context, out *NormalizedBiomarker, b *Biomarker, subject SubjectContext, bound Flag) error {
	profile := subject.ProfileName
	if profile == "" {
		profile = p.defaultProfile
	}

	resolved, err := p.resolver.Resolve(ctx, RangeQuery{
		BiomarkerID: b.ID,
		Unit:        b.CanonicalUnit,
		Sex:         subject.Sex,
		AgeYears:    subject.AgeYears,
		ProfileName: profile,
	})
	if err != nil {
		return err
	}

	switch {
	case resolved != nil:
		out.ReferenceLow = resolved.Range.Low
		out.ReferenceHigh = resolved.Range.High
		out.CriticalLow = resolved.Range.CriticalLow
		out.CriticalHigh = resolved.Range.CriticalHigh
		out.ReferenceNotes = resolved.Range.Notes
		out.Context.ProfileUsed = resolved.Profile
		out.Context.RangeSource = RangeSourceProfile

		if resolved.Profile != profile {
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("no reference range in profile %q, used %q", profile, resolved.Profile))
		}
	case b.GlobalDefaultMin != nil || b.GlobalDefaultMax != nil:
		out.ReferenceLow = b.GlobalDefaultMin
		out.ReferenceHigh = b.GlobalDefaultMax
		out.Context.RangeSource = RangeSourceBiomarkerDefault
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("no reference range found for %s in %s, using biomarker defaults", b.Name, b.CanonicalUnit))
	default:
		out.Context.RangeSource = RangeSourceNone
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("no reference range found for %s in %s", b.Name, b.CanonicalUnit))
	}

	if bound != FlagHigh && out.ReferenceLow != nil && out.ValueCanonical < *out.ReferenceLow {
		out.Flags = addFlag(out.Flags, FlagLow)
	}

	if bound != FlagLow && out.ReferenceHigh != nil && out.ValueCanonical > *out.ReferenceHigh {
		out.Flags = addFlag(out.Flags, FlagHigh)
	}

	return nil
}

// applyDisplay renders the value in the preferred display unit when a
// conversion to it exists, otherwise in the canonical unit.
func (p *Pipeline) applyDisplay(ctx context.Context, out *NormalizedBiomarker, b *Biomarker) error {
	value, unit := out.ValueCanonical, b.CanonicalUnit

	if b.PreferredUnit != nil && strings.TrimSpace(*b.PreferredUnit) != "" && !sameUnit(*b.PreferredUnit, b.CanonicalUnit) {
		conv, err := p.store.FindConversion(ctx, b.ID, b.CanonicalUnit, *b.PreferredUnit)
		if err != nil {
			return fmt.Errorf("failed to look up display conversion: %w", err)
		}

		if conv != nil {
			value, unit = conv.Apply(value), *b.PreferredUnit
		}
	}

	precision := b.DisplayPrecision
	if precision < 0 {
		precision = -1
	}

	out.ValueDisplay = strconv.FormatFloat(value, 'f', precision, 64)
	out.UnitDisplay = unit

	return nil
}
