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
	"github.com/sahilm/fuzzy"
)

// Match strategy names recorded in the audit trail.
const (
	StrategyExactName       = "exact_name"
	StrategyExactSynonym    = "exact_synonym"
	StrategyCaseInsensitive = "case_insensitive"
	StrategyFuzzy           = "fuzzy"
)

// Match identifies the catalog biomarker a raw name resolved to.
type Match struct {
	BiomarkerID uuid.UUID
	// Biomarker is set when the strategy already loaded the record.
	Biomarker *Biomarker
	// Synonym is the matched synonym label, empty for canonical name hits.
	Synonym  string
	Strategy string
	Warning  string
}

// MatchStrategy is one tier of the name matcher. A nil match with a nil error
// passes the name on to the next tier.
type MatchStrategy interface {
	Name() string
	Match(ctx context.Context, nameRaw string) (*Match, error)
}

// Catalog resolves raw lab names through an ordered list of strategies. The
// first strategy that matches wins.
type Catalog struct {
	strategies []MatchStrategy
}

// NewCatalog returns a catalog running strategies in the given order.
func NewCatalog(strategies ...MatchStrategy) *Catalog {
	return &Catalog{strategies: strategies}
}

// DefaultStrategies returns the exact name, exact synonym and case-insensitive
// tiers, in that order.
func DefaultStrategies(store Store) []MatchStrategy {
	return []MatchStrategy{
		ExactNameMatcher{store: store},
		ExactSynonymMatcher{store: store},
		CaseInsensitiveMatcher{store: store},
	}
}

// Strategies returns the configured tiers in order.
func (c *Catalog) Strategies() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}

	return names
}

// Resolve matches nameRaw. An unmatched name returns ErrUnrecognizedBiomarker.
func (c *Catalog) Resolve(ctx context.Context, nameRaw string) (*Match, error) {
	name := strings.TrimSpace(nameRaw)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnrecognizedBiomarker)
	}

	for _, strategy := range c.strategies {
		m, err := strategy.Match(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to match %q with %s: %w", name, strategy.Name(), err)
		}

		if m != nil {
			m.Strategy = strategy.Name()
			return m, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnrecognizedBiomarker, name)
}

// ExactNameMatcher matches the canonical display name exactly.
type ExactNameMatcher struct {
	store Store
}

// Name implements MatchStrategy.
func (ExactNameMatcher) Name() string { return StrategyExactName }

// Match implements MatchStrategy.
func (m ExactNameMatcher) Match(ctx context.Context, nameRaw string) (*Match, error) {
	b, err := m.store.FindBiomarkerByName(ctx, nameRaw, false)
	if err != nil || b == nil {
		return nil, err
	}

	return &Match{BiomarkerID: b.ID, Biomarker: b}, nil
}

// ExactSynonymMatcher matches a synonym label exactly.
type ExactSynonymMatcher struct {
	store Store
}

// Name implements MatchStrategy.
func (ExactSynonymMatcher) Name() string { return StrategyExactSynonym }

// Match implements MatchStrategy.
func (m ExactSynonymMatcher) Match(ctx context.Context, nameRaw string) (*Match, error) {
	syn, err := m.store.FindSynonym(ctx, nameRaw, false)
	if err != nil || syn == nil {
		return nil, err
	}

	return &Match{BiomarkerID: syn.BiomarkerID, Synonym: syn.Label}, nil
}

// CaseInsensitiveMatcher matches canonical names, then non-exact synonyms,
// ignoring case.
type CaseInsensitiveMatcher struct {
	store Store
}

// Name implements MatchStrategy.
func (CaseInsensitiveMatcher) Name() string { return StrategyCaseInsensitive }

// Match implements MatchStrategy.
func (m CaseInsensitiveMatcher) Match(ctx context.Context, nameRaw string) (*Match, error) {
	b, err := m.store.FindBiomarkerByName(ctx, nameRaw, true)
	if err != nil {
		return nil, err
	}

	if b != nil {
		return &Match{BiomarkerID: b.ID, Biomarker: b}, nil
	}

	syn, err := m.store.FindSynonym(ctx, nameRaw, true)
	if err != nil || syn == nil {
		return nil, err
	}

	return &Match{BiomarkerID: syn.BiomarkerID, Synonym: syn.Label}, nil
}

// FuzzyMatcher picks the best subsequence match across all labels. It only
// accepts matches scoring at least MinScore.
type FuzzyMatcher struct {
	lister   LabelLister
	minScore int
}

// NewFuzzyMatcher returns a fuzzy tier reading labels from lister.
func NewFuzzyMatcher(lister LabelLister, minScore int) FuzzyMatcher {
	return FuzzyMatcher{lister: lister, minScore: minScore}
}

// Name implements MatchStrategy.
func (FuzzyMatcher) Name() string { return StrategyFuzzy }

// Match implements MatchStrategy.
func (m FuzzyMatcher) Match(ctx context.Context, nameRaw string) (*Match, error) {
	labels, err := m.lister.ListMatchLabels(ctx)
	if err != nil {
		return nil, err
	}

	data := make([]string, len(labels))
	for i, l := range labels {
		data[i] = l.Label
	}

	matches := fuzzy.Find(nameRaw, data)
	if len(matches) == 0 || matches[0].Score < m.minScore {
		return nil, nil //nolint:nilnil // No acceptable candidate.
	}

	best := labels[matches[0].Index]
	match := &Match{
		BiomarkerID: best.BiomarkerID,
		Warning:     fmt.Sprintf("name %q fuzzy-matched to %q (score %d)", nameRaw, best.Label, matches[0].Score),
	}

	if best.Synonym {
		match.Synonym = best.Label
	}

	return match, nil
}
