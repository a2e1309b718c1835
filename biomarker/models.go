/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"github.com/google/uuid"
)

// DefaultProfileName is the reference profile every range lookup falls back to.
const DefaultProfileName = "Global Default"

// Biomarker is a canonical catalog entry. Values are always normalized into
// CanonicalUnit.
type Biomarker struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Category         string    `json:"category" db:"category"`
	CanonicalUnit    string    `json:"canonicalUnit" db:"canonical_unit"`
	PreferredUnit    *string   `json:"preferredUnit,omitempty" db:"preferred_unit"`
	DisplayPrecision int       `json:"displayPrecision" db:"display_precision"`
	GlobalDefaultMin *float64  `json:"globalDefaultRefMin,omitempty" db:"global_default_ref_min"`
	GlobalDefaultMax *float64  `json:"globalDefaultRefMax,omitempty" db:"global_default_ref_max"`
}

// Synonym is an alternate label a lab may use for a biomarker. Exact synonyms
// only match with identical casing.
type Synonym struct {
	BiomarkerID uuid.UUID `json:"biomarkerId" db:"biomarker_id"`
	Label       string    `json:"label" db:"label"`
	Exact       bool      `json:"exact" db:"exact"`
}

// ConversionType selects the formula a UnitConversion applies.
type ConversionType string

// ConversionType values.
const (
	ConversionRatio  ConversionType = "ratio"  // out = in * multiplier
	ConversionAffine ConversionType = "affine" // out = in * multiplier + offset
)

// UnitConversion converts values of one biomarker from FromUnit to ToUnit.
// The inverse direction is a separate row.
type UnitConversion struct {
	BiomarkerID uuid.UUID      `json:"biomarkerId" db:"biomarker_id"`
	FromUnit    string         `json:"fromUnit" db:"from_unit"`
	ToUnit      string         `json:"toUnit" db:"to_unit"`
	Type        ConversionType `json:"conversionType" db:"conversion_type"`
	Multiplier  float64        `json:"multiplier" db:"multiplier"`
	Offset      float64        `json:"offset" db:"offset"`
}

// ReferenceProfile is a named collection of reference ranges, usually tied to
// a region or a lab.
type ReferenceProfile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	CountryCode *string   `json:"countryCode,omitempty" db:"country_code"`
	LabName     *string   `json:"labName,omitempty" db:"lab_name"`
	IsDefault   bool      `json:"isDefault" db:"is_default"`
}

// Sex is the stratum a reference range row applies to.
type Sex string

// Sex values for reference range rows.
const (
	SexAny    Sex = "any"
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ReferenceProfileRange is one sex/age stratum of a profile's range for a
// biomarker in a given unit.
type ReferenceProfileRange struct {
	ProfileID    uuid.UUID `json:"profileId" db:"profile_id"`
	BiomarkerID  uuid.UUID `json:"biomarkerId" db:"biomarker_id"`
	Unit         string    `json:"unit" db:"unit"`
	Sex          Sex       `json:"sex" db:"sex"`
	AgeMinYears  *int      `json:"ageMinY,omitempty" db:"age_min_y"`
	AgeMaxYears  *int      `json:"ageMaxY,omitempty" db:"age_max_y"`
	Low          *float64  `json:"low,omitempty" db:"low"`
	High         *float64  `json:"high,omitempty" db:"high"`
	CriticalLow  *float64  `json:"criticalLow,omitempty" db:"critical_low"`
	CriticalHigh *float64  `json:"criticalHigh,omitempty" db:"critical_high"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
}

// RawBiomarker is one extracted lab row before normalization.
type RawBiomarker struct {
	NameRaw  string  `json:"name_raw"`
	ValueRaw string  `json:"value_raw"`
	UnitRaw  string  `json:"unit_raw"`
	FlagRaw  *string `json:"flag_raw,omitempty"`
}

// Flag marks a value below or above a threshold.
type Flag string

// Flag values.
const (
	FlagLow  Flag = "LOW"
	FlagHigh Flag = "HIGH"
)

// SubjectContext describes the person a batch belongs to. All fields are
// optional.
type SubjectContext struct {
	Sex         string `json:"sex,omitempty"`
	AgeYears    *int   `json:"ageYears,omitempty"`
	ProfileName string `json:"profileName,omitempty"`
}

// NormalizationContext records every non-default decision taken for a row.
type NormalizationContext struct {
	MatchedSynonym    string   `json:"matchedSynonym,omitempty"`
	MatchStrategy     string   `json:"matchStrategy,omitempty"`
	ConversionApplied bool     `json:"conversionApplied"`
	ConversionFormula string   `json:"conversionFormula,omitempty"`
	ProfileUsed       string   `json:"profileUsed,omitempty"`
	RangeSource       string   `json:"rangeSource,omitempty"`
	ParseWarnings     []string `json:"parseWarnings,omitempty"`
}

// Range sources recorded in NormalizationContext.RangeSource.
const (
	RangeSourceProfile          = "profile"
	RangeSourceBiomarkerDefault = "biomarker_default"
	RangeSourceNone             = "none"
)

// NormalizedBiomarker is the pipeline output for one row. UnitCanonical is
// always the matched biomarker's canonical unit.
type NormalizedBiomarker struct {
	BiomarkerName   string               `json:"biomarkerName"`
	BiomarkerID     uuid.UUID            `json:"biomarkerId"`
	Category        string               `json:"category,omitempty"`
	ValueRawString  string               `json:"valueRawString"`
	ValueRawNumeric float64              `json:"valueRawNumeric"`
	UnitRaw         string               `json:"unitRaw"`
	ValueCanonical  float64              `json:"valueCanonical"`
	UnitCanonical   string               `json:"unitCanonical"`
	ValueDisplay    string               `json:"valueDisplay"`
	UnitDisplay     string               `json:"unitDisplay"`
	ReferenceLow    *float64             `json:"referenceLow,omitempty"`
	ReferenceHigh   *float64             `json:"referenceHigh,omitempty"`
	CriticalLow     *float64             `json:"criticalLow,omitempty"`
	CriticalHigh    *float64             `json:"criticalHigh,omitempty"`
	ReferenceNotes  *string              `json:"referenceNotes,omitempty"`
	Flags           []Flag               `json:"flags"`
	Warnings        []string             `json:"warnings"`
	Context         NormalizationContext `json:"normalizationContext"`
}

// HasFlag reports whether f is set on the record.
func (n *NormalizedBiomarker) HasFlag(f Flag) bool {
	for _, existing := range n.Flags {
		if existing == f {
			return true
		}
	}

	return false
}

// SkippedRow is a row excluded because it was not recognized.
type SkippedRow struct {
	Index  int          `json:"index"`
	Row    RawBiomarker `json:"row"`
	Reason string       `json:"reason"`
}

// FailedRow is a row excluded because of a data-integrity fault.
type FailedRow struct {
	Index int          `json:"index"`
	Row   RawBiomarker `json:"row"`
	Error string       `json:"error"`
}

// BatchResult holds the three outcome buckets of a batch. Every input row
// lands in exactly one bucket.
type BatchResult struct {
	Normalized []NormalizedBiomarker `json:"normalized"`
	Skipped    []SkippedRow          `json:"skipped"`
	Failed     []FailedRow           `json:"failed"`
}

// Total returns the number of rows accounted for.
func (r *BatchResult) Total() int {
	return len(r.Normalized) + len(r.Skipped) + len(r.Failed)
}
