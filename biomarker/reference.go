/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RangeQuery describes the subject a reference range is resolved for.
type RangeQuery struct {
	BiomarkerID uuid.UUID
	Unit        string
	Sex         string
	AgeYears    *int
	ProfileName string
}

// ResolvedRange is the range row chosen for a query and the profile that
// supplied it.
type ResolvedRange struct {
	Range   ReferenceProfileRange
	Profile string
	// Tried lists the profiles consulted, in order.
	Tried []string
}

// Resolver finds reference ranges by walking a profile fallback chain.
type Resolver struct {
	store    Store
	fallback string
}

// NewResolver returns a resolver falling back to DefaultProfileName.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, fallback: DefaultProfileName}
}

// NormalizeSex maps a subject sex onto a range stratum. Anything other than
// male or female only matches rows marked any.
func NormalizeSex(sex string) Sex {
	switch strings.ToLower(strings.TrimSpace(sex)) {
	case "male", "m":
		return SexMale
	case "female", "f":
		return SexFemale
	default:
		return SexAny
	}
}

// FallbackChain returns the ordered, de-duplicated profile names to try.
func (r *Resolver) FallbackChain(profileName string) []string {
	name := strings.TrimSpace(profileName)
	if name == "" || name == r.fallback {
		return []string{r.fallback}
	}

	return []string{name, r.fallback}
}

// Resolve walks the fallback chain and returns the first profile with an
// eligible row. A nil result with a nil error means no profile had one.
func (r *Resolver) Resolve(ctx context.Context, q RangeQuery) (*ResolvedRange, error) {
	sex := NormalizeSex(q.Sex)
	chain := r.FallbackChain(q.ProfileName)
	tried := make([]string, 0, len(chain))

	for _, name := range chain {
		tried = append(tried, name)

		profile, err := r.store.FindProfileByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up profile %q: %w", name, err)
		}

		if profile == nil {
			continue
		}

		rows, err := r.store.FindProfileRanges(ctx, profile.ID, q.BiomarkerID, q.Unit)
		if err != nil {
			return nil, fmt.Errorf("failed to look up ranges in profile %q: %w", name, err)
		}

		if best, ok := selectRange(rows, sex, q.AgeYears); ok {
			return &ResolvedRange{Range: best, Profile: profile.Name, Tried: tried}, nil
		}
	}

	return nil, nil //nolint:nilnil // Missing reference ranges are expected for some biomarkers.
}

// rangeEligible applies the sex and age filters. Without an age, age bounds
// are ignored.
func rangeEligible(row ReferenceProfileRange, sex Sex, age *int) bool {
	if row.Sex != SexAny && (sex == SexAny || row.Sex != sex) {
		return false
	}

	if age == nil {
		return true
	}

	if row.AgeMinYears != nil && *age < *row.AgeMinYears {
		return false
	}

	if row.AgeMaxYears != nil && *age > *row.AgeMaxYears {
		return false
	}

	return true
}

// specificity ranks eligible rows. Sex-specific rows beat "any"; with an age,
// bounded rows beat unbounded ones and narrower spans beat wider ones. The
// span is -1 unless the row has both age bounds.
func specificity(row ReferenceProfileRange, age *int) (int, int) {
	score := 0
	if row.Sex != SexAny {
		score += 4
	}

	if age == nil {
		return score, 0
	}

	bounds := 0
	if row.AgeMinYears != nil {
		bounds++
	}

	if row.AgeMaxYears != nil {
		bounds++
	}

	score += bounds

	span := -1
	if bounds == 2 {
		span = *row.AgeMaxYears - *row.AgeMinYears
	}

	return score, span
}

// selectRange returns the most specific eligible row. Ties keep store order.
func selectRange(rows []ReferenceProfileRange, sex Sex, age *int) (ReferenceProfileRange, bool) {
	var (
		best      ReferenceProfileRange
		bestScore int
		bestSpan  int
		found     bool
	)

	for _, row := range rows {
		if !rangeEligible(row, sex, age) {
			continue
		}

		score, span := specificity(row, age)

		switch {
		case !found:
		case score > bestScore:
		case score == bestScore && span >= 0 && bestSpan >= 0 && span < bestSpan:
		default:
			continue
		}

		best, bestScore, bestSpan, found = row, score, span, true
	}

	return best, found
}
