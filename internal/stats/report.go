// Package stats contains matrix summaries and terminal reporting.
package stats

import (
	"math"

	"github.com/verte-zerg/ddgheat/internal/model"
)

// ResidueSummary aggregates the present cells of one mutant residue row.
type ResidueSummary struct {
	Residue string
	Count   int
	Mean    float64
	Min     float64
	Max     float64
}

// CellValue is one present matrix cell.
type CellValue struct {
	Residue  string
	Position string
	Value    float64
}

// Report contains precomputed data for terminal rendering.
type Report struct {
	Residues      []ResidueSummary
	Destabilizing []CellValue
	Stabilizing   []CellValue
	Present       int
	Missing       int
}

// BuildReport summarizes a matrix, keeping the top n cells at each extreme.
func BuildReport(m *model.Matrix, top int) Report {
	report := Report{
		Residues:      SummarizeResidues(m),
		Destabilizing: TopCells(m, top, true),
		Stabilizing:   TopCells(m, top, false),
	}
	report.Present = m.Present()
	report.Missing = len(m.Residues)*len(m.Positions) - report.Present
	return report
}

// SummarizeResidues computes count, mean, min and max per residue row.
func SummarizeResidues(m *model.Matrix) []ResidueSummary {
	out := make([]ResidueSummary, 0, len(m.Residues))
	for r, residue := range m.Residues {
		s := ResidueSummary{Residue: residue, Min: math.Inf(1), Max: math.Inf(-1)}
		var sum float64
		for c := range m.Positions {
			cell := m.At(r, c)
			if !cell.Present {
				continue
			}
			s.Count++
			sum += cell.Value
			if cell.Value < s.Min {
				s.Min = cell.Value
			}
			if cell.Value > s.Max {
				s.Max = cell.Value
			}
		}
		if s.Count == 0 {
			s.Min, s.Max = 0, 0
		} else {
			s.Mean = sum / float64(s.Count)
		}
		out = append(out, s)
	}
	return out
}
