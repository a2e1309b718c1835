/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package biomarker

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParsedValue is a numeric lab value with the flags implied by its comparator.
// Bound is FlagLow for "<" values and FlagHigh for ">" values; the true
// result lies beyond Value in that direction.
type ParsedValue struct {
	Value    float64
	Bound    Flag
	Flags    []Flag
	Warnings []string
}

// comparators are checked in order, so two-character forms come first.
var comparators = []struct {
	prefix string
	flag   Flag
}{
	{"<=", FlagLow},
	{">=", FlagHigh},
	{"≤", FlagLow},
	{"≥", FlagHigh},
	{"<", FlagLow},
	{">", FlagHigh},
}

// ParseValue parses a raw value string. A leading "<" marks the value as below
// the reportable threshold (LOW) and ">" as above it (HIGH).
func ParseValue(raw string) (ParsedValue, error) {
	var parsed ParsedValue

	s := strings.TrimSpace(raw)
	if s == "" {
		return parsed, ErrEmptyValue
	}

	for _, c := range comparators {
		if !strings.HasPrefix(s, c.prefix) {
			continue
		}

		s = strings.TrimSpace(strings.TrimPrefix(s, c.prefix))
		parsed.Bound = c.flag
		parsed.Flags = addFlag(parsed.Flags, c.flag)
		parsed.Warnings = append(parsed.Warnings,
			fmt.Sprintf("value %q is a reporting-limit bound (%s)", strings.TrimSpace(raw), c.prefix))

		break
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return ParsedValue{}, fmt.Errorf("%w: %q", ErrUnparseableValue, raw)
	}

	parsed.Value = v

	return parsed, nil
}

// addFlag inserts f keeping the set ordered LOW, HIGH without duplicates.
func addFlag(flags []Flag, f Flag) []Flag {
	hasLow, hasHigh := f == FlagLow, f == FlagHigh

	for _, existing := range flags {
		switch existing {
		case FlagLow:
			hasLow = true
		case FlagHigh:
			hasHigh = true
		}
	}

	out := make([]Flag, 0, 2)
	if hasLow {
		out = append(out, FlagLow)
	}

	if hasHigh {
		out = append(out, FlagHigh)
	}

	return out
}

// parseFlagRaw reads lab-supplied flag tokens such as "H", "LOW", "CH" or
// "↑". Punctuation like "H*" or "(L)" splits tokens, so markers are ignored.
func parseFlagRaw(raw string) []Flag {
	var flags []Flag

	if strings.ContainsRune(raw, '↑') {
		flags = addFlag(flags, FlagHigh)
	}

	if strings.ContainsRune(raw, '↓') {
		flags = addFlag(flags, FlagLow)
	}

	tokens := strings.FieldsFunc(strings.ToUpper(raw), func(r rune) bool {
		return (r < 'A' || r > 'Z') && (r < '0' || r > '9')
	})

	for _, tok := range tokens {
		switch tok {
		case "H", "HI", "HIGH", "HH", "CH", "HC", "HIGHCRIT", "CRITH":
			flags = addFlag(flags, FlagHigh)
		case "L", "LO", "LOW", "LL", "CL", "LC", "LOWCRIT", "CRITL":
			flags = addFlag(flags, FlagLow)
		}
	}

	return flags
}
