// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flamego/flamego"

	"github.com/humaidq/labnorm/biomarker"
)

type failingNormalizer struct {
	err error
}

func (f failingNormalizer) NormalizeBatch(context.Context, []biomarker.RawBiomarker, biomarker.SubjectContext) (*biomarker.BatchResult, error) {
	return nil, f.err
}

func newTestServer(t *testing.T, normalizer Normalizer) *flamego.Flame {
	t.Helper()

	f := flamego.New()
	f.MapTo(normalizer, (*Normalizer)(nil))
	f.Post("/api/normalize", Normalize)
	f.NotFound(NotFound)

	return f
}

func newSeedProcessor(t *testing.T) *biomarker.BatchProcessor {
	t.Helper()

	processor, err := biomarker.NewBatchProcessor(biomarker.NewMemoryStore(biomarker.DefaultSeed()), biomarker.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create processor: %v", err)
	}

	return processor
}

func postNormalize(f *flamego.Flame, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/normalize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

func TestNormalizeReturnsBuckets(t *testing.T) {
	t.Parallel()

	f := newTestServer(t, newSeedProcessor(t))

	body := `{
		"rows": [
			{"name_raw": "Glucose", "value_raw": "5.5", "unit_raw": "mmol/L"},
			{"name_raw": "Unobtainium", "value_raw": "3", "unit_raw": "mg/dL"},
			{"name_raw": "CRP", "value_raw": "n/a", "unit_raw": "mg/L"}
		],
		"subject": {"sex": "female", "ageYears": 40}
	}`

	rec := postNormalize(f, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	var got struct {
		Normalized []biomarker.NormalizedBiomarker `json:"normalized"`
		Skipped    []biomarker.SkippedRow          `json:"skipped"`
		Failed     []biomarker.FailedRow           `json:"failed"`
		Total      int                             `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if got.Total != 3 || len(got.Normalized) != 1 || len(got.Skipped) != 1 || len(got.Failed) != 1 {
		t.Fatalf("unexpected buckets: total=%d normalized=%d skipped=%d failed=%d",
			got.Total, len(got.Normalized), len(got.Skipped), len(got.Failed))
	}

	if got.Normalized[0].BiomarkerName != "Fasting Glucose" || got.Normalized[0].UnitCanonical != "mg/dL" {
		t.Fatalf("unexpected normalized row: %+v", got.Normalized[0])
	}

	if got.Skipped[0].Index != 1 || got.Failed[0].Index != 2 {
		t.Fatalf("unexpected indices: skipped=%d failed=%d", got.Skipped[0].Index, got.Failed[0].Index)
	}
}

func TestNormalizeRejectsBadBodies(t *testing.T) {
	t.Parallel()

	f := newTestServer(t, newSeedProcessor(t))

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "empty", body: "", want: http.StatusBadRequest},
		{name: "malformed", body: `{"rows": [`, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"rows": [], "patient": "x"}`, want: http.StatusBadRequest},
		{name: "trailing data", body: `{"rows": []} {"rows": []}`, want: http.StatusBadRequest},
		{name: "negative age", body: `{"rows": [], "subject": {"ageYears": -3}}`, want: http.StatusBadRequest},
		{name: "age too high", body: `{"rows": [], "subject": {"ageYears": 151}}`, want: http.StatusBadRequest},
		{name: "too many rows", body: `{"rows": [` + strings.Repeat(`{},`, MaxRows) + `{}]}`, want: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := postNormalize(f, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}

			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Fatalf("expected JSON error body, got %q", rec.Body.String())
			}
		})
	}
}

func TestValidateNormalizeRequestAgeBounds(t *testing.T) {
	t.Parallel()

	for _, age := range []int{0, 45, MaxAgeYears} {
		req := &NormalizeRequest{Subject: biomarker.SubjectContext{AgeYears: &age}}
		if err := ValidateNormalizeRequest(req); err != nil {
			t.Fatalf("age %d: unexpected error %v", age, err)
		}
	}

	for _, age := range []int{-1, MaxAgeYears + 1} {
		req := &NormalizeRequest{Subject: biomarker.SubjectContext{AgeYears: &age}}
		if err := ValidateNormalizeRequest(req); !errors.Is(err, errInvalidAge) {
			t.Fatalf("age %d: expected errInvalidAge, got %v", age, err)
		}
	}

	req := &NormalizeRequest{Rows: make([]biomarker.RawBiomarker, MaxRows+1)}
	if err := ValidateNormalizeRequest(req); !IsTooManyRows(err) {
		t.Fatalf("expected row cap error, got %v", err)
	}
}

func TestNormalizeAcceptsEmptyBatch(t *testing.T) {
	t.Parallel()

	rec := postNormalize(newTestServer(t, newSeedProcessor(t)), `{"rows": []}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	if !strings.Contains(rec.Body.String(), `"normalized":[]`) {
		t.Fatalf("expected empty normalized bucket, got %q", rec.Body.String())
	}
}

func TestNormalizeMapsPipelineErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "interrupted", err: context.DeadlineExceeded, want: http.StatusServiceUnavailable},
		{name: "internal", err: biomarker.ErrNilStore, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := postNormalize(newTestServer(t, failingNormalizer{err: tt.err}), `{"rows": []}`)
			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestNotFoundReturnsJSON(t *testing.T) {
	t.Parallel()

	f := newTestServer(t, newSeedProcessor(t))

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	if !strings.Contains(rec.Body.String(), `"not found"`) {
		t.Fatalf("expected JSON not found body, got %q", rec.Body.String())
	}
}

func TestHealthzReportsInfo(t *testing.T) {
	t.Parallel()

	f := flamego.New()
	f.Map(Info{Strategies: []string{"exact_name"}, DefaultProfile: biomarker.DefaultProfileName, Store: "memory"})
	f.Get("/healthz", Healthz)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	for _, want := range []string{`"status":"ok"`, `"store":"memory"`, `"exact_name"`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("expected %s in body, got %q", want, rec.Body.String())
		}
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	t.Parallel()

	var got string

	f := flamego.New()
	f.Get("/ip", func(c flamego.Context) {
		got = clientIP(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	f.ServeHTTP(httptest.NewRecorder(), req)

	if got != "203.0.113.7" {
		t.Fatalf("expected forwarded client IP, got %q", got)
	}
}

func TestTimeoutBoundsRequestContext(t *testing.T) {
	t.Parallel()

	var hasDeadline bool

	f := flamego.New()
	f.Use(Timeout(time.Minute))
	f.Get("/ctx", func(c flamego.Context) {
		_, hasDeadline = c.Request().Context().Deadline()
	})

	f.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ctx", nil))

	if !hasDeadline {
		t.Fatal("expected request context to carry a deadline")
	}
}
