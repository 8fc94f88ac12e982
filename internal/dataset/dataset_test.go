package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/ddgheat/internal/model"
)

func TestReadPreservesOrderAndLines(t *testing.T) {
	input := "mutation,ddG_pred\nA_E_1_D,-1.0\nA_E_1_C,2.0\nB_E_2_D,0.5\n"
	rows, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []model.Row{
		{Line: 2, Code: "A_E_1_D", DDG: -1.0},
		{Line: 3, Code: "A_E_1_C", DDG: 2.0},
		{Line: 4, Code: "B_E_2_D", DDG: 0.5},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestReadMatchesColumnsByName(t *testing.T) {
	input := "\ufeffid, ddG_pred ,score,mutation\n7,0.25,x,S_A_10_T\n"
	rows, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 1 || rows[0].Code != "S_A_10_T" || rows[0].DDG != 0.25 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestReadMissingColumn(t *testing.T) {
	for _, tc := range []struct {
		name   string
		input  string
		column string
	}{
		{name: "no mutation", input: "code,ddG_pred\nA_E_1_D,1\n", column: ColumnMutation},
		{name: "no ddg", input: "mutation,ddg\nA_E_1_D,1\n", column: ColumnDDG},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.input))
			if !errors.Is(err, ErrMissingColumn) {
				t.Fatalf("expected ErrMissingColumn, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.column) {
				t.Fatalf("expected error to name %q, got %v", tc.column, err)
			}
		})
	}
}

func TestReadEmpty(t *testing.T) {
	for _, input := range []string{"", "mutation,ddG_pred\n", "mutation,ddG_pred\n,\n"} {
		if _, err := Read(strings.NewReader(input)); !errors.Is(err, ErrEmptyDataset) {
			t.Fatalf("input %q: expected ErrEmptyDataset, got %v", input, err)
		}
	}
}

func TestReadInvalidNumber(t *testing.T) {
	_, err := Read(strings.NewReader("mutation,ddG_pred\nA_E_1_D,abc\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line-numbered parse error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1CSE.csv")
	if err := os.WriteFile(path, []byte("mutation,ddG_pred\nA_E_1_D,-1.0\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	rows, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestReadMarksMissingValues(t *testing.T) {
	input := "mutation,ddG_pred\nA_E_1_D,-1.0\nA_E_2_D,NaN\nA_E_3_D,Inf\nA_E_4_D,\nA_E_5_D,-inf\nA_E_6_D,NA\n"
	rows, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []model.Row{
		{Line: 2, Code: "A_E_1_D", DDG: -1.0},
		{Line: 3, Code: "A_E_2_D", Missing: true},
		{Line: 4, Code: "A_E_3_D", Missing: true},
		{Line: 5, Code: "A_E_4_D", Missing: true},
		{Line: 6, Code: "A_E_5_D", Missing: true},
		{Line: 7, Code: "A_E_6_D", Missing: true},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}
