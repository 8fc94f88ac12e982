package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/ddgheat/internal/colorscale"
)

func TestRenderHeatmapPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	m := sampleMatrix()
	var buf bytes.Buffer
	err := RenderHeatmap(&buf, m, colorscale.Diverging(-1.5, 2.25), HeatmapOptions{Width: 80})
	if err != nil {
		t.Fatalf("render heatmap: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI codes for a non-terminal writer")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+len(m.Residues)+2 {
		t.Fatalf("unexpected line count %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "K1_E") || !strings.Contains(lines[0], "M3_E") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "A ") || !strings.Contains(lines[1], "-1.50") || !strings.Contains(lines[1], missingCell) {
		t.Fatalf("unexpected row %q", lines[1])
	}
	if !strings.Contains(out, "Positions 1-3 of 3") {
		t.Fatalf("expected window footer, got:\n%s", out)
	}
}

func TestRenderHeatmapWindowAndColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	m := sampleMatrix()
	var buf bytes.Buffer
	// Label column (2) plus one cell.
	err := RenderHeatmap(&buf, m, colorscale.Diverging(-1.5, 2.25), HeatmapOptions{Offset: 1, Width: 2 + cellWidth, Color: true})
	if err != nil {
		t.Fatalf("render heatmap: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Positions 2-2 of 3") {
		t.Fatalf("expected single-column window, got:\n%s", out)
	}
	if strings.Contains(out, "K1_E") {
		t.Fatalf("expected K1_E to be scrolled out")
	}
	if !strings.Contains(out, "\x1b[48;2;") {
		t.Fatalf("expected forced ANSI colors")
	}
}

func TestRenderHeatmapRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	if err := RenderHeatmap(&buf, sampleMatrix(), colorscale.Diverging(-1, 1), HeatmapOptions{Width: 80, Color: true}); err != nil {
		t.Fatalf("render heatmap: %v", err)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected NO_COLOR to disable ANSI output")
	}
}

func TestVisibleColumns(t *testing.T) {
	m := sampleMatrix()
	if got := VisibleColumns(m, 2+3*cellWidth); got != 3 {
		t.Fatalf("expected 3 columns, got %d", got)
	}
	if got := VisibleColumns(m, 1); got != minHeatmapColumns {
		t.Fatalf("expected minimum columns, got %d", got)
	}
}
