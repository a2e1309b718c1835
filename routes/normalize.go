/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/flamego/flamego"

	"github.com/humaidq/labnorm/biomarker"
)

const (
	// MaxRequestBytes caps the size of a normalize request body.
	MaxRequestBytes = 4 << 20
	// MaxRows caps the number of rows in one normalize request.
	MaxRows = 5000
	// MaxAgeYears is the oldest subject age accepted.
	MaxAgeYears = 150
)

// Normalizer runs a batch through the pipeline. *biomarker.BatchProcessor
// implements it.
type Normalizer interface {
	NormalizeBatch(ctx context.Context, rows []biomarker.RawBiomarker, subject biomarker.SubjectContext) (*biomarker.BatchResult, error)
}

// NormalizeRequest is the body of POST /api/normalize.
type NormalizeRequest struct {
	Rows    []biomarker.RawBiomarker `json:"rows"`
	Subject biomarker.SubjectContext `json:"subject"`
}

// NormalizeResponse wraps the batch result with a row count.
type NormalizeResponse struct {
	*biomarker.BatchResult

	RowCount int `json:"total"`
}

// DecodeNormalizeRequest reads one JSON request, rejecting unknown fields and
// trailing data.
func DecodeNormalizeRequest(r io.Reader) (*NormalizeRequest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var req NormalizeRequest
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyBody
		}

		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	if dec.More() {
		return nil, errTrailingInput
	}

	if err := ValidateNormalizeRequest(&req); err != nil {
		return nil, err
	}

	return &req, nil
}

// ValidateNormalizeRequest checks the row cap and the subject age.
func ValidateNormalizeRequest(req *NormalizeRequest) error {
	if len(req.Rows) > MaxRows {
		return fmt.Errorf("%w: %d > %d", errTooManyRows, len(req.Rows), MaxRows)
	}

	if age := req.Subject.AgeYears; age != nil && (*age < 0 || *age > MaxAgeYears) {
		return fmt.Errorf("%w: %d not in 0-%d", errInvalidAge, *age, MaxAgeYears)
	}

	return nil
}

// IsTooManyRows reports whether err rejected a request for its row count.
func IsTooManyRows(err error) bool {
	return errors.Is(err, errTooManyRows)
}

// Normalize handles POST /api/normalize.
func Normalize(c flamego.Context, normalizer Normalizer) {
	body := http.MaxBytesReader(c.ResponseWriter(), c.Request().Request.Body, MaxRequestBytes)

	req, err := DecodeNormalizeRequest(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || IsTooManyRows(err) {
			writeJSONError(c, http.StatusRequestEntityTooLarge, err.Error())
			return
		}

		writeJSONError(c, http.StatusBadRequest, err.Error())

		return
	}

	result, err := normalizer.NormalizeBatch(c.Request().Context(), req.Rows, req.Subject)
	if err != nil {
		logger.Error("Failed to normalize batch", "rows", len(req.Rows), "error", err)

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeJSONError(c, http.StatusServiceUnavailable, "normalization interrupted")
			return
		}

		writeJSONError(c, http.StatusInternalServerError, "failed to normalize batch")

		return
	}

	writeJSON(c, http.StatusOK, NormalizeResponse{BatchResult: result, RowCount: result.Total()})
}
