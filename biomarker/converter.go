/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Conversion is the outcome of converting one value.
type Conversion struct {
	Value   float64
	Applied bool
	Formula string
	Warning string
}

// Apply evaluates the conversion formula for v.
func (c UnitConversion) Apply(v float64) float64 {
	if c.Type == ConversionAffine {
		return v*c.Multiplier + c.Offset
	}

	return v * c.Multiplier
}

// Formula renders the conversion for the audit trail.
func (c UnitConversion) Formula() string {
	formula := fmt.Sprintf("%s = %s * %s", c.ToUnit, c.FromUnit, formatNumber(c.Multiplier))
	if c.Type != ConversionAffine {
		return formula
	}

	if c.Offset < 0 {
		return formula + " - " + formatNumber(-c.Offset)
	}

	return formula + " + " + formatNumber(c.Offset)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Converter converts values into a biomarker's canonical unit.
type Converter struct {
	store Store
}

// NewConverter returns a converter backed by store.
func NewConverter(store Store) *Converter {
	return &Converter{store: store}
}

// Convert converts value from fromUnit to toUnit. Identical units are a no-op.
// When no conversion row exists the value passes through unchanged and the
// result carries a warning.
func (c *Converter) Convert(ctx context.Context, biomarkerID uuid.UUID, value float64, fromUnit, toUnit string) (Conversion, error) {
	if strings.TrimSpace(fromUnit) == "" {
		return Conversion{
			Value:   value,
			Warning: fmt.Sprintf("no unit reported, assuming canonical unit %s", toUnit),
		}, nil
	}

	if sameUnit(fromUnit, toUnit) {
		return Conversion{Value: value}, nil
	}

	conv, err := c.store.FindConversion(ctx, biomarkerID, fromUnit, toUnit)
	if err != nil {
		return Conversion{}, fmt.Errorf("failed to look up conversion %s -> %s: %w", fromUnit, toUnit, err)
	}

	if conv == nil {
		return Conversion{
			Value:   value,
			Warning: fmt.Sprintf("no conversion found from %s to %s, using raw value", fromUnit, toUnit),
		}, nil
	}

	return Conversion{
		Value:   conv.Apply(value),
		Applied: true,
		Formula: conv.Formula(),
	}, nil
}
