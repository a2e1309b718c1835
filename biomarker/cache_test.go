// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package biomarker

import (
	"errors"
	"testing"
	"time"
)

func TestCachedStoreMemoizesLookups(t *testing.T) {
	t.Parallel()

	counting := newCountingStore(NewMemoryStore(DefaultSeed()))
	store := NewCachedStore(counting, time.Minute)

	for i := 0; i < 3; i++ {
		b, err := store.FindBiomarkerByName(testContext(), "Testosterone", false)
		if err != nil || b == nil {
			t.Fatalf("FindBiomarkerByName failed: %v %v", b, err)
		}

		missing, err := store.FindBiomarkerByName(testContext(), "Bananas", true)
		if err != nil || missing != nil {
			t.Fatalf("expected cached miss, got %v %v", missing, err)
		}
	}

	if n := counting.count("name"); n != 2 {
		t.Fatalf("expected 2 store lookups, got %d", n)
	}

	// Folded and exact lookups are cached separately.
	if _, err := store.FindBiomarkerByName(testContext(), "Testosterone", true); err != nil {
		t.Fatalf("FindBiomarkerByName failed: %v", err)
	}

	if n := counting.count("name"); n != 3 {
		t.Fatalf("expected 3 store lookups, got %d", n)
	}

	store.Flush()

	if store.Len() != 0 {
		t.Fatalf("expected empty cache after flush, got %d entries", store.Len())
	}
}

func TestCachedStoreDoesNotCacheFaults(t *testing.T) {
	t.Parallel()

	faulty := &faultyStore{Store: NewMemoryStore(DefaultSeed()), failName: "Albumin"}
	store := NewCachedStore(faulty, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := store.FindBiomarkerByName(testContext(), "Albumin", false); !errors.Is(err, errStoreDown) {
			t.Fatalf("expected store fault, got %v", err)
		}
	}

	if faulty.failCalls != 2 {
		t.Fatalf("expected both calls to reach the store, got %d", faulty.failCalls)
	}
}

func TestCachedStoreBacksPipeline(t *testing.T) {
	t.Parallel()

	counting := newCountingStore(NewMemoryStore(DefaultSeed()))

	bp, err := NewBatchProcessor(NewCachedStore(counting, time.Minute), Config{Workers: 1})
	if err != nil {
		t.Fatalf("NewBatchProcessor failed: %v", err)
	}

	rows := []RawBiomarker{
		{NameRaw: "Testosterone", ValueRaw: "650", UnitRaw: "ng/dL"},
		{NameRaw: "Testosterone", ValueRaw: "700", UnitRaw: "ng/dL"},
	}

	result, err := bp.NormalizeBatch(testContext(), rows, SubjectContext{Sex: "Male"})
	if err != nil {
		t.Fatalf("NormalizeBatch failed: %v", err)
	}

	if len(result.Normalized) != 2 {
		t.Fatalf("expected 2 normalized rows, got %+v", result)
	}

	if n := counting.count("ranges"); n != 1 {
		t.Fatalf("expected range lookup to be cached, got %d lookups", n)
	}
}
