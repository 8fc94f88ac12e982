package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/ddgheat/internal/stats"
)

func buildResidueTable(rows []stats.ResidueSummary, width, height int) table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Residue", Width: 7},
			{Title: "Cells", Width: 6},
			{Title: "Mean", Width: 8},
			{Title: "Min", Width: 8},
			{Title: "Max", Width: 8},
		}),
		table.WithRows(residueRows(rows)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(residueTableStyles())
	return t
}

func residueRows(rows []stats.ResidueSummary) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		if r.Count == 0 {
			out = append(out, table.Row{r.Residue, "0", "-", "-", "-"})
			continue
		}
		out = append(out, table.Row{
			r.Residue,
			fmt.Sprintf("%d", r.Count),
			fmt.Sprintf("%.2f", r.Mean),
			fmt.Sprintf("%.2f", r.Min),
			fmt.Sprintf("%.2f", r.Max),
		})
	}
	return out
}

func residueTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
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

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
