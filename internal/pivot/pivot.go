// Package pivot reshapes mutation records into a residue-by-position matrix.
package pivot

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/verte-zerg/ddgheat/internal/dataset"
	"github.com/verte-zerg/ddgheat/internal/model"
)

// ErrDuplicateCell is returned under the error policy when a cell is written twice.
var ErrDuplicateCell = errors.New("duplicate cell")

// Options controls matrix construction.
type Options struct {
	Duplicates model.DuplicatePolicy
	Positions  []model.PositionRange
}

// Result is the pivot matrix plus bookkeeping about the input.
type Result struct {
	Matrix     *model.Matrix
	Duplicates int
	OutOfRange int
}

type cellKey struct {
	residue string
	label   string
}

// Build pivots records into a dense matrix. Columns keep first-seen order,
// rows are sorted residues, and values are rounded once on insertion.
func Build(records []model.Mutation, opts Options) (Result, error) {
	policy := opts.Duplicates
	if policy == "" {
		policy = model.DuplicateLast
	}
	if err := ValidatePolicy(policy); err != nil {
		return Result{}, err
	}

	var res Result
	kept := make([]model.Mutation, 0, len(records))
	for _, rec := range records {
		if !inRanges(rec.Position, opts.Positions) {
			res.OutOfRange++
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == 0 {
		return Result{}, fmt.Errorf("%w: no mutations left after filtering", dataset.ErrEmptyDataset)
	}

	colIndex := map[string]int{}
	var positions []string
	residueSet := map[string]struct{}{}
	for _, rec := range kept {
		label := rec.Label()
		if _, ok := colIndex[label]; !ok {
			colIndex[label] = len(positions)
			positions = append(positions, label)
		}
		residueSet[rec.Mutant] = struct{}{}
	}
	residues := make([]string, 0, len(residueSet))
	for r := range residueSet {
		residues = append(residues, r)
	}
	sort.Strings(residues)
	rowIndex := make(map[string]int, len(residues))
	for i, r := range residues {
		rowIndex[r] = i
	}

	cells := make([][]model.Cell, len(residues))
	for i := range cells {
		cells[i] = make([]model.Cell, len(positions))
	}
	firstLine := map[cellKey]int{}
	for _, rec := range kept {
		if rec.Missing {
			continue
		}
		label := rec.Label()
		r, c := rowIndex[rec.Mutant], colIndex[label]
		if cells[r][c].Present {
			res.Duplicates++
			switch policy {
			case model.DuplicateFirst:
				continue
			case model.DuplicateError:
				return Result{}, fmt.Errorf("%w: %s at %s (lines %d and %d)", ErrDuplicateCell, rec.Mutant, label, firstLine[cellKey{rec.Mutant, label}], rec.Line)
			}
		} else {
			firstLine[cellKey{rec.Mutant, label}] = rec.Line
		}
		cells[r][c] = model.Cell{Value: Round2(rec.DDG), Present: true}
	}

	res.Matrix = &model.Matrix{
		Residues:  residues,
		Positions: positions,
		Cells:     cells,
	}
	return res, nil
}

// Round2 rounds to two decimals, halves away from zero (0.125 -> 0.13).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidatePolicy checks a duplicate policy name.
func ValidatePolicy(policy model.DuplicatePolicy) error {
	switch policy {
	case model.DuplicateLast, model.DuplicateFirst, model.DuplicateError:
		return nil
	default:
		return fmt.Errorf("unknown duplicate policy %q (use last, first or error)", policy)
	}
}

func inRanges(pos int, ranges []model.PositionRange) bool {
	if len(ranges) == 0 {
		return true
	}
	for _, r := range ranges {
		if r.Contains(pos) {
			return true
		}
	}
	return false
}
