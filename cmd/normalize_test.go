// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/labnorm/biomarker"
	"github.com/humaidq/labnorm/routes"
)

func TestDecodeInputAcceptsBareArray(t *testing.T) {
	t.Parallel()

	req, err := decodeInput([]byte(`  [{"name_raw": "HDL", "value_raw": "1.2", "unit_raw": "mmol/L", "flag_raw": "L"}]`))
	if err != nil {
		t.Fatalf("decodeInput failed: %v", err)
	}

	flag := "L"
	want := []biomarker.RawBiomarker{{NameRaw: "HDL", ValueRaw: "1.2", UnitRaw: "mmol/L", FlagRaw: &flag}}

	if diff := cmp.Diff(want, req.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeInputAcceptsRequestObject(t *testing.T) {
	t.Parallel()

	req, err := decodeInput([]byte(`{"rows": [{"name_raw": "WBC", "value_raw": "6", "unit_raw": "10^3/uL"}], "subject": {"sex": "male", "ageYears": 52}}`))
	if err != nil {
		t.Fatalf("decodeInput failed: %v", err)
	}

	if len(req.Rows) != 1 || req.Subject.Sex != "male" || req.Subject.AgeYears == nil || *req.Subject.AgeYears != 52 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeInputRejectsEmptyAndMalformed(t *testing.T) {
	t.Parallel()

	if _, err := decodeInput([]byte(" \n ")); !errors.Is(err, errEmptyInput) {
		t.Fatalf("expected errEmptyInput, got %v", err)
	}

	if _, err := decodeInput([]byte(`[{"name_raw": `)); err == nil {
		t.Fatal("expected malformed array to fail")
	}

	if _, err := decodeInput([]byte(`{"rows": [], "extra": true}`)); err == nil {
		t.Fatal("expected unknown field to fail")
	}
}

func TestDecodeInputValidatesBothForms(t *testing.T) {
	t.Parallel()

	bareArray := "[" + strings.Repeat(`{"name_raw": "TC", "value_raw": "1", "unit_raw": "mg/dL"},`, routes.MaxRows) +
		`{"name_raw": "TC", "value_raw": "1", "unit_raw": "mg/dL"}]`
	if _, err := decodeInput([]byte(bareArray)); !routes.IsTooManyRows(err) {
		t.Fatalf("expected bare array over the row cap to fail, got %v", err)
	}

	if _, err := decodeInput([]byte(`{"rows": [], "subject": {"ageYears": -1}}`)); err == nil {
		t.Fatal("expected negative subject age to fail")
	}
}

func runSubjectFlags(t *testing.T, subject biomarker.SubjectContext, args ...string) (biomarker.SubjectContext, error) {
	t.Helper()

	var applyErr error

	command := &cli.Command{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sex"},
			&cli.IntFlag{Name: "age"},
			&cli.StringFlag{Name: "profile"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			applyErr = applySubjectFlags(cmd, &subject)
			return nil
		},
	}

	if err := command.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("command failed: %v", err)
	}

	return subject, applyErr
}

func TestApplySubjectFlags(t *testing.T) {
	t.Parallel()

	age := 30
	fromInput := biomarker.SubjectContext{Sex: "female", AgeYears: &age, ProfileName: "LabCorp"}

	t.Run("unset flags keep input", func(t *testing.T) {
		t.Parallel()

		got, err := runSubjectFlags(t, fromInput, "--profile", "Other")
		if err != nil {
			t.Fatalf("applySubjectFlags failed: %v", err)
		}

		if diff := cmp.Diff(fromInput, got); diff != "" {
			t.Fatalf("subject changed (-want +got):\n%s", diff)
		}
	})

	t.Run("flags override", func(t *testing.T) {
		t.Parallel()

		got, err := runSubjectFlags(t, biomarker.SubjectContext{}, "--sex", "male", "--age", "45", "--profile", "LabCorp")
		if err != nil {
			t.Fatalf("applySubjectFlags failed: %v", err)
		}

		wantAge := 45
		want := biomarker.SubjectContext{Sex: "male", AgeYears: &wantAge, ProfileName: "LabCorp"}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("subject mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("age out of range", func(t *testing.T) {
		t.Parallel()

		if _, err := runSubjectFlags(t, biomarker.SubjectContext{}, "--age", "200"); !errors.Is(err, errInvalidAge) {
			t.Fatalf("expected errInvalidAge, got %v", err)
		}
	})
}

func TestNormalizeCommandUsesBuiltInCatalog(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	input := filepath.Join(t.TempDir(), "rows.json")
	rows := `[
		{"name_raw": "Total Testosterone", "value_raw": "12", "unit_raw": "nmol/L"},
		{"name_raw": "Vitamin Q", "value_raw": "1", "unit_raw": "mg"}
	]`

	if err := os.WriteFile(input, []byte(rows), 0o600); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	var out bytes.Buffer

	app := &cli.Command{
		Name:     "labnorm",
		Writer:   &out,
		Commands: []*cli.Command{CmdNormalize},
	}

	args := []string{"labnorm", "normalize", "--input", input, "--sex", "male", "--age", "40", "--workers", "2", "--compact"}
	if err := app.Run(context.Background(), args); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	var got struct {
		Normalized []biomarker.NormalizedBiomarker `json:"normalized"`
		Skipped    []biomarker.SkippedRow          `json:"skipped"`
		Total      int                             `json:"total"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode output %q: %v", out.String(), err)
	}

	if got.Total != 2 || len(got.Normalized) != 1 || len(got.Skipped) != 1 {
		t.Fatalf("unexpected result: %s", out.String())
	}

	record := got.Normalized[0]
	if record.BiomarkerName != "Testosterone" || record.UnitCanonical != "ng/dL" {
		t.Fatalf("unexpected record: %+v", record)
	}

	if !strings.Contains(record.Context.ConversionFormula, "28.84") {
		t.Fatalf("expected conversion formula, got %q", record.Context.ConversionFormula)
	}

	if record.ReferenceLow == nil || *record.ReferenceLow != 300 {
		t.Fatalf("expected adult male range, got %v", record.ReferenceLow)
	}
}

func TestWriteCatalogListsBiomarkers(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if err := writeCatalog(&out, biomarker.DefaultSeed()); err != nil {
		t.Fatalf("writeCatalog failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != len(biomarker.DefaultSeed().Biomarkers)+1 {
		t.Fatalf("expected header plus one line per biomarker, got %d lines", len(lines))
	}

	if !strings.HasPrefix(lines[0], "NAME") {
		t.Fatalf("expected header, got %q", lines[0])
	}

	if !strings.Contains(out.String(), "µmol/L") {
		t.Fatalf("expected creatinine display unit in output:\n%s", out.String())
	}
}
