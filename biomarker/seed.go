/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"github.com/google/uuid"
)

// Seed is a complete catalog snapshot. Ranges are kept in insertion order.
type Seed struct {
	Biomarkers  []Biomarker
	Synonyms    []Synonym
	Conversions []UnitConversion
	Profiles    []ReferenceProfile
	Ranges      []ReferenceProfileRange
}

// seedNamespace scopes deterministic catalog IDs so every store agrees on them.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/humaidq/labnorm/catalog"))

// BiomarkerID returns the deterministic ID of a seeded biomarker.
func BiomarkerID(name string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte("biomarker:"+name))
}

// ProfileID returns the deterministic ID of a seeded reference profile.
func ProfileID(name string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte("profile:"+name))
}

// BiomarkerDefinition describes a biomarker together with its synonyms and
// unit conversions.
type BiomarkerDefinition struct {
	Name             string
	Category         string
	CanonicalUnit    string
	PreferredUnit    string
	DisplayPrecision int
	DefaultMin       *float64
	DefaultMax       *float64
	Synonyms         []string
	ExactSynonyms    []string
	Conversions      []ConversionDefinition
}

// ConversionDefinition is a unit conversion of the enclosing biomarker.
type ConversionDefinition struct {
	From, To   string
	Type       ConversionType
	Multiplier float64
	Offset     float64
}

// ProfileDefinition is a reference profile with its ranges.
type ProfileDefinition struct {
	Name        string
	CountryCode string
	LabName     string
	IsDefault   bool
	Ranges      []RangeDefinition
}

// RangeDefinition is one stratum of a profile range, keyed by biomarker name.
type RangeDefinition struct {
	Biomarker    string
	Unit         string
	Sex          Sex
	AgeMin       *int
	AgeMax       *int
	Low, High    *float64
	CriticalLow  *float64
	CriticalHigh *float64
	Notes        string
}

// ptr is a helper to create pointers to float64 literals
func ptr(f float64) *float64 {
	return &f
}

func years(y int) *int {
	return &y
}

func ratio(from, to string, m float64) ConversionDefinition {
	return ConversionDefinition{From: from, To: to, Type: ConversionRatio, Multiplier: m}
}

func affine(from, to string, m, offset float64) ConversionDefinition {
	return ConversionDefinition{From: from, To: to, Type: ConversionAffine, Multiplier: m, Offset: offset}
}

// GetBiomarkerDefinitions returns the built-in biomarker catalog. Canonical
// units follow US conventional reporting.
func GetBiomarkerDefinitions() []BiomarkerDefinition {
	return []BiomarkerDefinition{
		// ===== LIPID PANEL =====
		{
			Name: "Total Cholesterol", Category: "Lipids", CanonicalUnit: "mg/dL",
			DefaultMax:    ptr(200),
			Synonyms:      []string{"Cholesterol", "Cholesterol, Total", "TC"},
			ExactSynonyms: []string{"CHOL"},
			Conversions: []ConversionDefinition{
				ratio("mmol/L", "mg/dL", 38.67),
				ratio("mg/dL", "mmol/L", 0.02586),
			},
		},
		{
			Name: "HDL Cholesterol", Category: "Lipids", CanonicalUnit: "mg/dL",
			DefaultMin: ptr(40),
			Synonyms:   []string{"HDL", "HDL-C", "High-Density Lipoprotein", "Cholesterol, HDL"},
			Conversions: []ConversionDefinition{
				ratio("mmol/L", "mg/dL", 38.67),
				ratio("mg/dL", "mmol/L", 0.02586),
			},
		},
		{
			Name: "LDL Cholesterol", Category: "Lipids", CanonicalUnit: "mg/dL",
			DefaultMax: ptr(100),
			Synonyms:   []string{"LDL", "LDL-C", "LDL Cholesterol Calc", "Low-Density Lipoprotein"},
			Conversions: []ConversionDefinition{
				ratio("mmol/L", "mg/dL", 38.67),
				ratio("mg/dL", "mmol/L", 0.02586),
			},
		},
		{
			Name: "Triglycerides", Category: "Lipids", CanonicalUnit: "mg/dL",
			DefaultMax: ptr(150),
			Synonyms:   []string{"Triglyceride", "TG", "TRIG"},
			Conversions: []ConversionDefinition{
				ratio("mmol/L", "mg/dL", 88.57),
				ratio("mg/dL", "mmol/L", 0.01129),
			},
		},

		// ===== GLYCEMIC =====
		{
			Name: "HbA1c", Category: "Glycemic", CanonicalUnit: "%",
			DisplayPrecision: 1,
			DefaultMin:       ptr(4.0), DefaultMax: ptr(5.6),
			Synonyms: []string{"Hemoglobin A1c", "Haemoglobin A1c", "Glycated Hemoglobin", "A1C", "HgbA1c"},
			Conversions: []ConversionDefinition{
				// IFCC mmol/mol to NGSP %
				affine("mmol/mol", "%", 0.09148, 2.152),
				affine("%", "mmol/mol", 10.929, -23.5),
			},
		},
		{
			Name: "Fasting Glucose", Category: "Glycemic", CanonicalUnit: "mg/dL",
			DefaultMin: ptr(70), DefaultMax: ptr(99),
			Synonyms:   []string{"Glucose", "Glucose, Fasting", "Fasting Blood Glucose", "FBG", "GLU"},
			Conversions: []ConversionDefinition{
				ratio("mmol/L", "mg/dL", 18.016),
				ratio("mg/dL", "mmol/L", 0.0555),
			},
		},

		// ===== INFLAMMATION =====
		{
			Name: "C-Reactive Protein", Category: "Inflammation", CanonicalUnit: "mg/L",
			DisplayPrecision: 1,
			DefaultMax:       ptr(3.0),
			Synonyms:         []string{"CRP", "hs-CRP", "hsCRP", "High-Sensitivity CRP"},
			Conversions: []ConversionDefinition{
				ratio("mg/dL", "mg/L", 10),
				ratio("mg/L", "mg/dL", 0.1),
			},
		},

		// ===== KIDNEY =====
		{
			Name: "Creatinine", Category: "Kidney", CanonicalUnit: "mg/dL",
			PreferredUnit: "µmol/L", DisplayPrecision: 2,
			DefaultMin: ptr(0.6), DefaultMax: ptr(1.3),
			Synonyms:   []string{"Serum Creatinine", "CREA"},
			Conversions: []ConversionDefinition{
				ratio("µmol/L", "mg/dL", 0.01131),
				ratio("umol/L", "mg/dL", 0.01131),
				ratio("mg/dL", "µmol/L", 88.42),
			},
		},
		{
			Name: "Albumin", Category: "Kidney", CanonicalUnit: "g/dL",
			DisplayPrecision: 1,
			DefaultMin:       ptr(3.5), DefaultMax: ptr(5.5),
			Synonyms:         []string{"Serum Albumin", "ALB"},
			Conversions: []ConversionDefinition{
				ratio("g/L", "g/dL", 0.1),
				ratio("g/dL", "g/L", 10),
			},
		},
		{
			Name: "Blood Urea Nitrogen", Category: "Kidney", CanonicalUnit: "mg/dL",
			DefaultMin: ptr(7), DefaultMax: ptr(20),
			Synonyms:   []string{"BUN", "Urea Nitrogen"},
			Conversions: []ConversionDefinition{
				ratio("mmol/L", "mg/dL", 2.801),
			},
		},

		// ===== COMPLETE BLOOD COUNT =====
		{
			Name: "White Blood Cells", Category: "CBC", CanonicalUnit: "10^3/uL",
			DisplayPrecision: 1,
			DefaultMin:       ptr(4.5), DefaultMax: ptr(11.0),
			Synonyms:         []string{"WBC", "Leukocytes", "White Blood Cell Count"},
			Conversions: []ConversionDefinition{
				ratio("10^9/L", "10^3/uL", 1),
				ratio("x10^9/L", "10^3/uL", 1),
			},
		},
		{
			Name: "Red Blood Cells", Category: "CBC", CanonicalUnit: "10^6/uL",
			DisplayPrecision: 2,
			Synonyms:         []string{"RBC", "Erythrocytes", "Red Blood Cell Count"},
			Conversions: []ConversionDefinition{
				ratio("10^12/L", "10^6/uL", 1),
				ratio("x10^12/L", "10^6/uL", 1),
			},
		},
		{
			Name: "Hemoglobin", Category: "CBC", CanonicalUnit: "g/dL",
			DisplayPrecision: 1,
			Synonyms:         []string{"HGB", "Haemoglobin"},
			ExactSynonyms:    []string{"Hb"},
			Conversions: []ConversionDefinition{
				ratio("g/L", "g/dL", 0.1),
				ratio("mmol/L", "g/dL", 1.611),
			},
		},
		{
			Name: "Hematocrit", Category: "CBC", CanonicalUnit: "%",
			DisplayPrecision: 1,
			Synonyms:         []string{"HCT", "Haematocrit", "PCV"},
			Conversions: []ConversionDefinition{
				ratio("L/L", "%", 100),
			},
		},
		{
			Name: "Platelets", Category: "CBC", CanonicalUnit: "10^3/uL",
			DefaultMin: ptr(150), DefaultMax: ptr(400),
			Synonyms:   []string{"PLT", "Platelet Count", "Thrombocytes"},
			Conversions: []ConversionDefinition{
				ratio("10^9/L", "10^3/uL", 1),
				ratio("x10^9/L", "10^3/uL", 1),
			},
		},
		{
			Name: "Mean Corpuscular Volume", Category: "CBC", CanonicalUnit: "fL",
			DefaultMin: ptr(80), DefaultMax: ptr(100),
			Synonyms:   []string{"MCV"},
		},
		{
			Name: "Mean Corpuscular Hemoglobin Concentration", Category: "CBC", CanonicalUnit: "g/dL",
			DisplayPrecision: 1,
			DefaultMin:       ptr(32), DefaultMax: ptr(36),
			Synonyms:         []string{"MCHC"},
			Conversions: []ConversionDefinition{
				ratio("g/L", "g/dL", 0.1),
			},
		},

		// ===== HORMONES =====
		{
			Name: "Testosterone", Category: "Hormones", CanonicalUnit: "ng/dL",
			Synonyms: []string{"Total Testosterone", "Testosterone, Total", "Testosterone Total"},
			Conversions: []ConversionDefinition{
				ratio("nmol/L", "ng/dL", 28.84),
				ratio("ng/dL", "nmol/L", 0.0347),
			},
		},
	}
}

// GetProfileDefinitions returns the built-in reference profiles. Within a
// profile, rows for the same biomarker are listed adult-first so that lookups
// without an age prefer adult ranges.
func GetProfileDefinitions() []ProfileDefinition {
	return []ProfileDefinition{
		{
			Name: DefaultProfileName, IsDefault: true,
			Ranges: []RangeDefinition{
				{Biomarker: "Total Cholesterol", Unit: "mg/dL", Sex: SexAny, High: ptr(200), Notes: "Desirable <200; borderline 200-239"},
				{Biomarker: "HDL Cholesterol", Unit: "mg/dL", Sex: SexMale, Low: ptr(40)},
				{Biomarker: "HDL Cholesterol", Unit: "mg/dL", Sex: SexFemale, Low: ptr(50)},
				{Biomarker: "LDL Cholesterol", Unit: "mg/dL", Sex: SexAny, High: ptr(100), Notes: "Optimal <100; borderline 130-159"},
				{Biomarker: "Triglycerides", Unit: "mg/dL", Sex: SexAny, High: ptr(150), CriticalHigh: ptr(500)},
				{Biomarker: "HbA1c", Unit: "%", Sex: SexAny, Low: ptr(4.0), High: ptr(5.6), Notes: "Prediabetes 5.7-6.4; diabetes >=6.5"},
				{Biomarker: "Fasting Glucose", Unit: "mg/dL", Sex: SexAny, Low: ptr(70), High: ptr(99), CriticalLow: ptr(40), CriticalHigh: ptr(400)},
				{Biomarker: "C-Reactive Protein", Unit: "mg/L", Sex: SexAny, Low: ptr(0), High: ptr(3.0)},
				{Biomarker: "Creatinine", Unit: "mg/dL", Sex: SexMale, AgeMin: years(18), Low: ptr(0.7), High: ptr(1.3)},
				{Biomarker: "Creatinine", Unit: "mg/dL", Sex: SexFemale, AgeMin: years(18), Low: ptr(0.6), High: ptr(1.1)},
				{Biomarker: "Creatinine", Unit: "mg/dL", Sex: SexAny, AgeMax: years(17), Low: ptr(0.3), High: ptr(0.7)},
				{Biomarker: "Albumin", Unit: "g/dL", Sex: SexAny, Low: ptr(3.5), High: ptr(5.5)},
				{Biomarker: "Blood Urea Nitrogen", Unit: "mg/dL", Sex: SexAny, Low: ptr(7), High: ptr(20)},
				{Biomarker: "White Blood Cells", Unit: "10^3/uL", Sex: SexAny, AgeMin: years(18), Low: ptr(4.5), High: ptr(11.0)},
				{Biomarker: "White Blood Cells", Unit: "10^3/uL", Sex: SexAny, AgeMin: years(1), AgeMax: years(17), Low: ptr(4.5), High: ptr(13.0)},
				{Biomarker: "Red Blood Cells", Unit: "10^6/uL", Sex: SexMale, Low: ptr(4.7), High: ptr(6.1)},
				{Biomarker: "Red Blood Cells", Unit: "10^6/uL", Sex: SexFemale, Low: ptr(4.2), High: ptr(5.4)},
				{Biomarker: "Hemoglobin", Unit: "g/dL", Sex: SexMale, Low: ptr(13.5), High: ptr(17.5), CriticalLow: ptr(7.0), CriticalHigh: ptr(20.0)},
				{Biomarker: "Hemoglobin", Unit: "g/dL", Sex: SexFemale, Low: ptr(12.0), High: ptr(16.0), CriticalLow: ptr(7.0), CriticalHigh: ptr(20.0)},
				{Biomarker: "Hematocrit", Unit: "%", Sex: SexMale, Low: ptr(38.3), High: ptr(48.6)},
				{Biomarker: "Hematocrit", Unit: "%", Sex: SexFemale, Low: ptr(35.5), High: ptr(44.9)},
				{Biomarker: "Platelets", Unit: "10^3/uL", Sex: SexAny, Low: ptr(150), High: ptr(400), CriticalLow: ptr(50), CriticalHigh: ptr(1000)},
				{Biomarker: "Mean Corpuscular Volume", Unit: "fL", Sex: SexAny, Low: ptr(80), High: ptr(100)},
				{Biomarker: "Mean Corpuscular Hemoglobin Concentration", Unit: "g/dL", Sex: SexAny, Low: ptr(32), High: ptr(36)},
				{Biomarker: "Testosterone", Unit: "ng/dL", Sex: SexMale, AgeMin: years(18), Low: ptr(300), High: ptr(1000)},
				{Biomarker: "Testosterone", Unit: "ng/dL", Sex: SexMale, AgeMax: years(17), Low: ptr(7), High: ptr(800), Notes: "Varies with pubertal stage"},
				{Biomarker: "Testosterone", Unit: "ng/dL", Sex: SexFemale, AgeMin: years(18), Low: ptr(15), High: ptr(70)},
			},
		},
		{
			Name: "LabCorp", CountryCode: "US", LabName: "LabCorp",
			Ranges: []RangeDefinition{
				{Biomarker: "Testosterone", Unit: "ng/dL", Sex: SexMale, AgeMin: years(19), Low: ptr(264), High: ptr(916)},
				{Biomarker: "Fasting Glucose", Unit: "mg/dL", Sex: SexAny, Low: ptr(65), High: ptr(99)},
			},
		},
	}
}

// DefaultSeed assembles the built-in catalog.
func DefaultSeed() Seed {
	return BuildSeed(GetBiomarkerDefinitions(), GetProfileDefinitions())
}

// BuildSeed turns definitions into catalog entities with deterministic IDs.
func BuildSeed(biomarkers []BiomarkerDefinition, profiles []ProfileDefinition) Seed {
	var seed Seed

	for _, def := range biomarkers {
		id := BiomarkerID(def.Name)

		b := Biomarker{
			ID:               id,
			Name:             def.Name,
			Category:         def.Category,
			CanonicalUnit:    def.CanonicalUnit,
			DisplayPrecision: def.DisplayPrecision,
			GlobalDefaultMin: def.DefaultMin,
			GlobalDefaultMax: def.DefaultMax,
		}
		if def.PreferredUnit != "" {
			preferred := def.PreferredUnit
			b.PreferredUnit = &preferred
		}

		seed.Biomarkers = append(seed.Biomarkers, b)

		for _, label := range def.Synonyms {
			seed.Synonyms = append(seed.Synonyms, Synonym{BiomarkerID: id, Label: label})
		}

		for _, label := range def.ExactSynonyms {
			seed.Synonyms = append(seed.Synonyms, Synonym{BiomarkerID: id, Label: label, Exact: true})
		}

		for _, c := range def.Conversions {
			seed.Conversions = append(seed.Conversions, UnitConversion{
				BiomarkerID: id,
				FromUnit:    c.From,
				ToUnit:      c.To,
				Type:        c.Type,
				Multiplier:  c.Multiplier,
				Offset:      c.Offset,
			})
		}
	}

	for _, def := range profiles {
		profileID := ProfileID(def.Name)

		p := ReferenceProfile{ID: profileID, Name: def.Name, IsDefault: def.IsDefault}
		if def.CountryCode != "" {
			country := def.CountryCode
			p.CountryCode = &country
		}

		if def.LabName != "" {
			lab := def.LabName
			p.LabName = &lab
		}

		seed.Profiles = append(seed.Profiles, p)

		for _, r := range def.Ranges {
			row := ReferenceProfileRange{
				ProfileID:    profileID,
				BiomarkerID:  BiomarkerID(r.Biomarker),
				Unit:         r.Unit,
				Sex:          r.Sex,
				AgeMinYears:  r.AgeMin,
				AgeMaxYears:  r.AgeMax,
				Low:          r.Low,
				High:         r.High,
				CriticalLow:  r.CriticalLow,
				CriticalHigh: r.CriticalHigh,
			}
			if r.Notes != "" {
				notes := r.Notes
				row.Notes = &notes
			}

			seed.Ranges = append(seed.Ranges, row)
		}
	}

	return seed
}
