// Package stats contains matrix summaries and terminal reporting.
package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/ddgheat/internal/colorscale"
	"github.com/verte-zerg/ddgheat/internal/model"
)

// RenderSummary prints matrix shape and value range.
func RenderSummary(w io.Writer, m *model.Matrix, scale colorscale.Scale, report Report) error {
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Residues: %d\n", len(m.Residues)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Positions: %d\n", len(m.Positions)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Cells: %d present, %d missing\n", report.Present, report.Missing); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "ΔΔG range: %.2f to %.2f\n", scale.Min, scale.Max); err != nil {
		return err
	}
	if !scale.Centered {
		if _, err := fmt.Fprintln(w, "Note: values do not straddle zero; one-sided color scale."); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderResidueTable prints per-residue aggregates.
func RenderResidueTable(w io.Writer, rows []ResidueSummary) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No residues found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Residue"); err != nil {
		return err
	}
	headers := []string{"Residue", "Count", "Mean", "Min", "Max"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Residue,
			fmt.Sprintf("%d", r.Count),
			fmt.Sprintf("%.2f", r.Mean),
			fmt.Sprintf("%.2f", r.Min),
			fmt.Sprintf("%.2f", r.Max),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderExtremes prints a ranked list of cells under title.
func RenderExtremes(w io.Writer, title string, cells []CellValue) error {
	if len(cells) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	headers := []string{"#", "Position", "Mutant", "ΔΔG"}
	tableRows := make([][]string, 0, len(cells))
	for i, c := range cells {
		tableRows = append(tableRows, []string{
			fmt.Sprintf("%d", i+1),
			c.Position,
			c.Residue,
			fmt.Sprintf("%.2f", c.Value),
		})
	}
	for _, line := range formatTable(headers, tableRows, map[int]bool{0: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderReport prints the summary, residue table and both extremes.
func RenderReport(w io.Writer, m *model.Matrix, scale colorscale.Scale, report Report) error {
	if err := RenderSummary(w, m, scale, report); err != nil {
		return err
	}
	if err := RenderResidueTable(w, report.Residues); err != nil {
		return err
	}
	if err := RenderExtremes(w, "Most Destabilizing", report.Destabilizing); err != nil {
		return err
	}
	return RenderExtremes(w, "Most Stabilizing", report.Stabilizing)
}
