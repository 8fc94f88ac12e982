package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Residue", "Mean", "Count"}
	rows := [][]string{
		{"A", "-0.25", "12"},
		{"W", "1.50", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Residue  Mean Count" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "A       -0.25    12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "W        1.50     3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableUsesDisplayWidth(t *testing.T) {
	lines := formatTable([]string{"ΔΔG", "x"}, [][]string{{"1.00", "y"}}, nil)
	if lines[0] != "ΔΔG  x" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
}
