/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store is the read-only catalog the engine queries. Lookups that find
// nothing return a nil result and a nil error; errors are reserved for store
// faults.
type Store interface {
	// FindBiomarkerByName matches a canonical display name, case-insensitively
	// when fold is set.
	FindBiomarkerByName(ctx context.Context, name string, fold bool) (*Biomarker, error)
	// FindSynonym matches a synonym label. With fold set, exact synonyms are
	// not considered.
	FindSynonym(ctx context.Context, label string, fold bool) (*Synonym, error)
	GetBiomarker(ctx context.Context, id uuid.UUID) (*Biomarker, error)
	// FindConversion compares units case-insensitively.
	FindConversion(ctx context.Context, biomarkerID uuid.UUID, fromUnit, toUnit string) (*UnitConversion, error)
	FindProfileByName(ctx context.Context, name string) (*ReferenceProfile, error)
	// FindProfileRanges returns rows in insertion order, comparing the unit
	// case-insensitively.
	FindProfileRanges(ctx context.Context, profileID, biomarkerID uuid.UUID, unit string) ([]ReferenceProfileRange, error)
}

// MatchLabel is a name the fuzzy tier may match against.
type MatchLabel struct {
	BiomarkerID uuid.UUID
	Label       string
	Synonym     bool
}

// LabelLister is implemented by stores that can enumerate every matchable
// label. Exact synonyms are left out.
type LabelLister interface {
	ListMatchLabels(ctx context.Context) ([]MatchLabel, error)
}

// sameUnit compares units the way every store does.
func sameUnit(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// MemoryStore is an in-memory Store. It is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	biomarkers  []Biomarker
	synonyms    []Synonym
	conversions []UnitConversion
	profiles    []ReferenceProfile
	ranges      []ReferenceProfileRange
}

// NewMemoryStore returns a store holding a copy of the seed.
func NewMemoryStore(seed Seed) *MemoryStore {
	s := &MemoryStore{}
	s.Load(seed)

	return s
}

// Load appends the seed's entities, keeping insertion order.
func (s *MemoryStore) Load(seed Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.biomarkers = append(s.biomarkers, seed.Biomarkers...)
	s.synonyms = append(s.synonyms, seed.Synonyms...)
	s.conversions = append(s.conversions, seed.Conversions...)
	s.profiles = append(s.profiles, seed.Profiles...)
	s.ranges = append(s.ranges, seed.Ranges...)
}

// FindBiomarkerByName implements Store.
func (s *MemoryStore) FindBiomarkerByName(_ context.Context, name string, fold bool) (*Biomarker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.biomarkers {
		b := s.biomarkers[i]
		if b.Name == name || (fold && strings.EqualFold(b.Name, name)) {
			return &b, nil
		}
	}

	return nil, nil //nolint:nilnil // Not found is not an error.
}

// FindSynonym implements Store.
func (s *MemoryStore) FindSynonym(_ context.Context, label string, fold bool) (*Synonym, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.synonyms {
		syn := s.synonyms[i]
		if fold {
			if !syn.Exact && strings.EqualFold(syn.Label, label) {
				return &syn, nil
			}

			continue
		}

		if syn.Label == label {
			return &syn, nil
		}
	}

	return nil, nil //nolint:nilnil // Not found is not an error.
}

// GetBiomarker implements Store.
func (s *MemoryStore) GetBiomarker(_ context.Context, id uuid.UUID) (*Biomarker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.biomarkers {
		if s.biomarkers[i].ID == id {
			b := s.biomarkers[i]
			return &b, nil
		}
	}

	return nil, nil //nolint:nilnil // Not found is not an error.
}

// FindConversion implements Store.
func (s *MemoryStore) FindConversion(_ context.Context, biomarkerID uuid.UUID, fromUnit, toUnit string) (*UnitConversion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.conversions {
		c := s.conversions[i]
		if c.BiomarkerID == biomarkerID && sameUnit(c.FromUnit, fromUnit) && sameUnit(c.ToUnit, toUnit) {
			return &c, nil
		}
	}

	return nil, nil //nolint:nilnil // Not found is not an error.
}

// FindProfileByName implements Store.
func (s *MemoryStore) FindProfileByName(_ context.Context, name string) (*ReferenceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.profiles {
		if s.profiles[i].Name == name {
			p := s.profiles[i]
			return &p, nil
		}
	}

	return nil, nil //nolint:nilnil // Not found is not an error.
}

// FindProfileRanges implements Store.
func (s *MemoryStore) FindProfileRanges(_ context.Context, profileID, biomarkerID uuid.UUID, unit string) ([]ReferenceProfileRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ReferenceProfileRange

	for _, r := range s.ranges {
		if r.ProfileID == profileID && r.BiomarkerID == biomarkerID && sameUnit(r.Unit, unit) {
			out = append(out, r)
		}
	}

	return out, nil
}

// ListMatchLabels implements LabelLister.
func (s *MemoryStore) ListMatchLabels(_ context.Context) ([]MatchLabel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	labels := make([]MatchLabel, 0, len(s.biomarkers)+len(s.synonyms))
	for _, b := range s.biomarkers {
		labels = append(labels, MatchLabel{BiomarkerID: b.ID, Label: b.Name})
	}

	for _, syn := range s.synonyms {
		if syn.Exact {
			continue
		}

		labels = append(labels, MatchLabel{BiomarkerID: syn.BiomarkerID, Label: syn.Label, Synonym: true})
	}

	return labels, nil
}
