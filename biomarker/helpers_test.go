// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package biomarker

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("store down")

func testContext() context.Context {
	return context.Background()
}

func newTestProcessor(t *testing.T, cfg Config) *BatchProcessor {
	t.Helper()

	bp, err := NewBatchProcessor(NewMemoryStore(DefaultSeed()), cfg)
	if err != nil {
		t.Fatalf("NewBatchProcessor failed: %v", err)
	}

	return bp
}

func newTestPipeline(t *testing.T, store Store) *Pipeline {
	t.Helper()

	p, err := NewPipeline(store, DefaultConfig())
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	return p
}

func assertFloatClose(t *testing.T, got, want float64) {
	t.Helper()

	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func assertBound(t *testing.T, name string, got *float64, want float64) {
	t.Helper()

	if got == nil {
		t.Fatalf("expected %s %v, got nil", name, want)
	}

	assertFloatClose(t, *got, want)
}

func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

// countingStore records how often each lookup reaches the wrapped store.
type countingStore struct {
	Store

	mu    sync.Mutex
	calls map[string]int
}

func newCountingStore(next Store) *countingStore {
	return &countingStore{Store: next, calls: map[string]int{}}
}

func (s *countingStore) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[op]++
}

func (s *countingStore) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[op]
}

func (s *countingStore) FindBiomarkerByName(ctx context.Context, name string, fold bool) (*Biomarker, error) {
	s.record("name")
	return s.Store.FindBiomarkerByName(ctx, name, fold)
}

func (s *countingStore) FindProfileByName(ctx context.Context, name string) (*ReferenceProfile, error) {
	s.record("profile")
	return s.Store.FindProfileByName(ctx, name)
}

func (s *countingStore) FindProfileRanges(ctx context.Context, profileID, biomarkerID uuid.UUID, unit string) ([]ReferenceProfileRange, error) {
	s.record("ranges")
	return s.Store.FindProfileRanges(ctx, profileID, biomarkerID, unit)
}

// faultyStore fails or panics on chosen inputs.
type faultyStore struct {
	Store

	failName  string
	panicName string
	failConv  bool
	failCalls int
	mu        sync.Mutex
}

func (s *faultyStore) FindBiomarkerByName(ctx context.Context, name string, fold bool) (*Biomarker, error) {
	if name == s.panicName {
		panic("boom")
	}

	if name == s.failName {
		s.mu.Lock()
		s.failCalls++
		s.mu.Unlock()

		return nil, errStoreDown
	}

	return s.Store.FindBiomarkerByName(ctx, name, fold)
}

func (s *faultyStore) FindConversion(ctx context.Context, biomarkerID uuid.UUID, fromUnit, toUnit string) (*UnitConversion, error) {
	if s.failConv {
		return nil, errStoreDown
	}

	return s.Store.FindConversion(ctx, biomarkerID, fromUnit, toUnit)
}
