// Package stats contains matrix summaries and terminal reporting.
package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/ddgheat/internal/colorscale"
	"github.com/verte-zerg/ddgheat/internal/model"
)

const (
	cellWidth           = 7
	missingCell         = "·"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	minHeatmapColumns   = 1
)

// HeatmapOptions controls the terminal heat map window.
type HeatmapOptions struct {
	// Offset is the first position column to draw.
	Offset int
	// Width is the total width in terminal cells; 0 means the terminal width.
	Width int
	// Color forces ANSI colors on regardless of the writer.
	Color bool
}

// VisibleColumns returns how many position columns fit into totalWidth
// next to the residue label column.
func VisibleColumns(m *model.Matrix, totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidthBackup
	}
	cols := (totalWidth - labelWidth(m)) / cellWidth
	if cols < minHeatmapColumns {
		cols = minHeatmapColumns
	}
	return cols
}

// RenderHeatmap draws a window of the matrix with one colored cell per value.
func RenderHeatmap(w io.Writer, m *model.Matrix, scale colorscale.Scale, opts HeatmapOptions) error {
	if len(m.Positions) == 0 || len(m.Residues) == 0 {
		_, err := fmt.Fprintln(w, "No cells to display.")
		return err
	}
	width := opts.Width
	if width <= 0 {
		width = terminalWidth()
	}
	useColor := shouldUseColor(w, opts.Color)
	start := clamp(opts.Offset, 0, len(m.Positions)-1)
	end := start + VisibleColumns(m, width)
	if end > len(m.Positions) {
		end = len(m.Positions)
	}
	lw := labelWidth(m)

	var header strings.Builder
	header.WriteString(strings.Repeat(" ", lw))
	for c := start; c < end; c++ {
		header.WriteString(padLeft(runewidth.Truncate(m.Positions[c], cellWidth-1, ""), cellWidth))
	}
	if _, err := fmt.Fprintln(w, header.String()); err != nil {
		return err
	}

	for r, residue := range m.Residues {
		var row strings.Builder
		row.WriteString(padRight(residue, lw))
		for c := start; c < end; c++ {
			cell := m.At(r, c)
			if !cell.Present {
				row.WriteString(padLeft(missingCell, cellWidth))
				continue
			}
			text := padLeft(fmt.Sprintf("%.2f", cell.Value), cellWidth)
			if useColor {
				row.WriteString(ansiCell(scale, cell.Value, text))
			} else {
				row.WriteString(text)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}

	footer := fmt.Sprintf("Positions %d-%d of %d", start+1, end, len(m.Positions))
	if _, err := fmt.Fprintln(w, footer); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(scale, useColor)); err != nil {
		return err
	}
	return nil
}

func renderLegend(scale colorscale.Scale, useColor bool) string {
	const steps = 9
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Legend: %.2f ", scale.Min))
	for i := 0; i < steps; i++ {
		v := scale.Min + (scale.Max-scale.Min)*float64(i)/float64(steps-1)
		if useColor {
			b.WriteString(ansiCell(scale, v, " "))
		} else {
			b.WriteString(legendGlyph(scale.Normalize(v)))
		}
	}
	b.WriteString(fmt.Sprintf(" %.2f", scale.Max))
	return b.String()
}

func legendGlyph(t float64) string {
	const ramp = " .:-=+*#%@"
	idx := int(t * float64(len(ramp)-1))
	return string(ramp[clamp(idx, 0, len(ramp)-1)])
}

func ansiCell(scale colorscale.Scale, v float64, text string) string {
	bg := scale.At(v)
	fg := "\x1b[38;2;40;40;40m"
	if colorscale.Luminance(bg) < 0.5 {
		fg = "\x1b[38;2;250;250;250m"
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm%s%s%s", bg.R, bg.G, bg.B, fg, text, colorReset)
}

func labelWidth(m *model.Matrix) int {
	lw := 0
	for _, r := range m.Residues {
		if w := runewidth.StringWidth(r); w > lw {
			lw = w
		}
	}
	return lw + 1
}

func padLeft(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
