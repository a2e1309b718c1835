// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package biomarker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		want      float64
		wantFlags []Flag
	}{
		{name: "plain integer", raw: "650", want: 650},
		{name: "decimal", raw: "5.4", want: 5.4},
		{name: "surrounding whitespace", raw: "  12.5 ", want: 12.5},
		{name: "negative", raw: "-2.5", want: -2.5},
		{name: "less than", raw: "<5", want: 5, wantFlags: []Flag{FlagLow}},
		{name: "greater than", raw: ">1000", want: 1000, wantFlags: []Flag{FlagHigh}},
		{name: "comparator with space", raw: "< 0.5", want: 0.5, wantFlags: []Flag{FlagLow}},
		{name: "less or equal", raw: "<=3", want: 3, wantFlags: []Flag{FlagLow}},
		{name: "greater or equal", raw: ">=90", want: 90, wantFlags: []Flag{FlagHigh}},
		{name: "unicode less or equal", raw: "≤0.1", want: 0.1, wantFlags: []Flag{FlagLow}},
		{name: "unicode greater or equal", raw: "≥60", want: 60, wantFlags: []Flag{FlagHigh}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseValue(tt.raw)
			if err != nil {
				t.Fatalf("ParseValue(%q) failed: %v", tt.raw, err)
			}

			assertFloatClose(t, got.Value, tt.want)

			if len(tt.wantFlags) == 1 && got.Bound != tt.wantFlags[0] {
				t.Fatalf("expected bound %s, got %q", tt.wantFlags[0], got.Bound)
			}

			if len(tt.wantFlags) == 0 && got.Bound != "" {
				t.Fatalf("expected no bound, got %q", got.Bound)
			}

			if diff := cmp.Diff(tt.wantFlags, got.Flags); diff != "" {
				t.Fatalf("flags mismatch (-want +got):\n%s", diff)
			}

			if len(tt.wantFlags) > 0 && len(got.Warnings) != 1 {
				t.Fatalf("expected one parse warning for comparator, got %v", got.Warnings)
			}

			if len(tt.wantFlags) == 0 && len(got.Warnings) != 0 {
				t.Fatalf("expected no parse warnings, got %v", got.Warnings)
			}
		})
	}
}

func TestParseValueComparatorProperty(t *testing.T) {
	t.Parallel()

	for _, n := range []float64{0, 0.001, 1, 5, 42.5, 1000, 123456.789} {
		s := fmt.Sprintf("%g", n)

		low, err := ParseValue("<" + s)
		if err != nil {
			t.Fatalf("ParseValue(<%s) failed: %v", s, err)
		}

		if low.Value != n || len(low.Flags) != 1 || low.Flags[0] != FlagLow {
			t.Fatalf("expected %v {LOW}, got %v %v", n, low.Value, low.Flags)
		}

		high, err := ParseValue(">" + s)
		if err != nil {
			t.Fatalf("ParseValue(>%s) failed: %v", s, err)
		}

		if high.Value != n || len(high.Flags) != 1 || high.Flags[0] != FlagHigh {
			t.Fatalf("expected %v {HIGH}, got %v %v", n, high.Value, high.Flags)
		}
	}
}

func TestParseValueRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want error
	}{
		{raw: "", want: ErrEmptyValue},
		{raw: "   ", want: ErrEmptyValue},
		{raw: "abc", want: ErrUnparseableValue},
		{raw: "<", want: ErrUnparseableValue},
		{raw: ">>5", want: ErrUnparseableValue},
		{raw: "5 mg", want: ErrUnparseableValue},
		{raw: "NaN", want: ErrUnparseableValue},
		{raw: "Inf", want: ErrUnparseableValue},
		{raw: "positive", want: ErrUnparseableValue},
	}

	for _, tt := range tests {
		if _, err := ParseValue(tt.raw); !errors.Is(err, tt.want) {
			t.Fatalf("ParseValue(%q): expected %v, got %v", tt.raw, tt.want, err)
		}
	}
}

func TestParseFlagRaw(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want []Flag
	}{
		{raw: "H", want: []Flag{FlagHigh}},
		{raw: "high", want: []Flag{FlagHigh}},
		{raw: "HH", want: []Flag{FlagHigh}},
		{raw: "l", want: []Flag{FlagLow}},
		{raw: "Low", want: []Flag{FlagLow}},
		{raw: "↑", want: []Flag{FlagHigh}},
		{raw: "↓", want: []Flag{FlagLow}},
		{raw: "(H)", want: []Flag{FlagHigh}},
		{raw: "H, L", want: []Flag{FlagLow, FlagHigh}},
		{raw: "CH", want: []Flag{FlagHigh}},
		{raw: "cl", want: []Flag{FlagLow}},
		{raw: "H*", want: []Flag{FlagHigh}},
		{raw: "L!", want: []Flag{FlagLow}},
		{raw: "CL*", want: []Flag{FlagLow}},
		{raw: "Hi", want: []Flag{FlagHigh}},
		{raw: "NORMAL", want: nil},
		{raw: "CHOL", want: nil},
		{raw: "N", want: nil},
		{raw: "", want: nil},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, parseFlagRaw(tt.raw)); diff != "" {
			t.Fatalf("parseFlagRaw(%q) mismatch (-want +got):\n%s", tt.raw, diff)
		}
	}
}

func TestAddFlagKeepsSetOrder(t *testing.T) {
	t.Parallel()

	flags := addFlag(nil, FlagHigh)
	flags = addFlag(flags, FlagLow)
	flags = addFlag(flags, FlagHigh)

	if diff := cmp.Diff([]Flag{FlagLow, FlagHigh}, flags); diff != "" {
		t.Fatalf("flags mismatch (-want +got):\n%s", diff)
	}
}
