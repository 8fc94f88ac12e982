// Package stats contains matrix summaries and terminal reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/ddgheat/internal/model"
)

// TopCells returns the n highest (destabilizing) or lowest (stabilizing) cells.
// Ties keep matrix order: residue rows first, then positions.
func TopCells(m *model.Matrix, n int, destabilizing bool) []CellValue {
	if n <= 0 {
		return nil
	}
	items := make([]CellValue, 0, m.Present())
	for r, residue := range m.Residues {
		for c, position := range m.Positions {
			cell := m.At(r, c)
			if !cell.Present {
				continue
			}
			items = append(items, CellValue{Residue: residue, Position: position, Value: cell.Value})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if destabilizing {
			return items[i].Value > items[j].Value
		}
		return items[i].Value < items[j].Value
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
