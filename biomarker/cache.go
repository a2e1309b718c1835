/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// CachedStore memoizes catalog lookups for a TTL, including misses. Store
// faults are never cached.
type CachedStore struct {
	next  Store
	cache *cache.Cache
}

// NewCachedStore wraps next with a TTL cache.
func NewCachedStore(next Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Flush drops every cached entry.
func (s *CachedStore) Flush() {
	s.cache.Flush()
}

// Len returns the number of cached entries.
func (s *CachedStore) Len() int {
	return s.cache.ItemCount()
}

// cached returns the value for key, loading it on a miss.
func cached[T any](s *CachedStore, key string, load func() (T, error)) (T, error) {
	if v, ok := s.cache.Get(key); ok {
		return v.(T), nil
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	s.cache.Set(key, v, cache.DefaultExpiration)

	return v, nil
}

func foldKey(s string, fold bool) string {
	if fold {
		return "i:" + strings.ToLower(s)
	}

	return "s:" + s
}

// FindBiomarkerByName implements Store.
func (s *CachedStore) FindBiomarkerByName(ctx context.Context, name string, fold bool) (*Biomarker, error) {
	return cached(s, "name|"+foldKey(name, fold), func() (*Biomarker, error) {
		return s.next.FindBiomarkerByName(ctx, name, fold)
	})
}

// FindSynonym implements Store.
func (s *CachedStore) FindSynonym(ctx context.Context, label string, fold bool) (*Synonym, error) {
	return cached(s, "synonym|"+foldKey(label, fold), func() (*Synonym, error) {
		return s.next.FindSynonym(ctx, label, fold)
	})
}

// GetBiomarker implements Store.
func (s *CachedStore) GetBiomarker(ctx context.Context, id uuid.UUID) (*Biomarker, error) {
	return cached(s, "id|"+id.String(), func() (*Biomarker, error) {
		return s.next.GetBiomarker(ctx, id)
	})
}

// FindConversion implements Store.
func (s *CachedStore) FindConversion(ctx context.Context, biomarkerID uuid.UUID, fromUnit, toUnit string) (*UnitConversion, error) {
	key := fmt.Sprintf("conv|%s|%s|%s", biomarkerID, strings.ToLower(fromUnit), strings.ToLower(toUnit))

	return cached(s, key, func() (*UnitConversion, error) {
		return s.next.FindConversion(ctx, biomarkerID, fromUnit, toUnit)
	})
}

// FindProfileByName implements Store.
func (s *CachedStore) FindProfileByName(ctx context.Context, name string) (*ReferenceProfile, error) {
	return cached(s, "profile|"+name, func() (*ReferenceProfile, error) {
		return s.next.FindProfileByName(ctx, name)
	})
}

// FindProfileRanges implements Store.
func (s *CachedStore) FindProfileRanges(ctx context.Context, profileID, biomarkerID uuid.UUID, unit string) ([]ReferenceProfileRange, error) {
	key := fmt.Sprintf("ranges|%s|%s|%s", profileID, biomarkerID, strings.ToLower(unit))

	return cached(s, key, func() ([]ReferenceProfileRange, error) {
		return s.next.FindProfileRanges(ctx, profileID, biomarkerID, unit)
	})
}

// ListMatchLabels implements LabelLister when the wrapped store does.
func (s *CachedStore) ListMatchLabels(ctx context.Context) ([]MatchLabel, error) {
	lister, ok := s.next.(LabelLister)
	if !ok {
		return nil, fmt.Errorf("store %T does not list labels", s.next)
	}

	return cached(s, "labels", func() ([]MatchLabel, error) {
		return lister.ListMatchLabels(ctx)
	})
}
