/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import "errors"

var (
	ErrEmptyValue            = errors.New("value is empty")
	ErrUnparseableValue      = errors.New("value is not a number")
	ErrUnrecognizedBiomarker = errors.New("unrecognized biomarker")
	ErrBiomarkerMissing      = errors.New("matched biomarker record is missing")
	ErrNilStore              = errors.New("catalog store is nil")
)

// IsSkip reports whether err marks a benign exclusion rather than a failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrUnrecognizedBiomarker)
}
