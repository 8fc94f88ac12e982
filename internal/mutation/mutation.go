// Package mutation parses point-mutation codes of the form WT_CHAIN_POS_MUT.
package mutation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/ddgheat/internal/model"
)

// DefaultExclude lists mutant residues dropped from saturation heat maps.
const DefaultExclude = "CGP"

// ErrMalformedCode is returned for codes that do not split into four fields.
var ErrMalformedCode = errors.New("invalid mutation code")

// ParseCode splits a code into its wild-type, chain, position and mutant fields.
// Fields past the fourth are ignored. The position text is kept verbatim for
// labels, so "A_E_01_D" and "A_E_1_D" land in different columns.
func ParseCode(code string) (model.Mutation, error) {
	parts := strings.Split(code, "_")
	if len(parts) < 4 {
		return model.Mutation{}, fmt.Errorf("%w %q: expected WT_CHAIN_POS_MUT", ErrMalformedCode, code)
	}
	posText := strings.TrimSpace(parts[2])
	position, err := strconv.Atoi(posText)
	if err != nil {
		return model.Mutation{}, fmt.Errorf("%w %q: position %q is not an integer", ErrMalformedCode, code, parts[2])
	}
	return model.Mutation{
		WildType:     parts[0],
		Chain:        parts[1],
		Position:     position,
		PositionText: posText,
		Mutant:       parts[3],
	}, nil
}

// ExclusionSet is a set of mutant residues to drop.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds a set from residue letters, e.g. "CGP" or "C,G,P".
func NewExclusionSet(residues string) ExclusionSet {
	set := ExclusionSet{}
	for _, r := range residues {
		if r == ',' || r == ' ' {
			continue
		}
		set[string(r)] = struct{}{}
	}
	return set
}

// Contains reports whether residue is excluded.
func (s ExclusionSet) Contains(residue string) bool {
	_, ok := s[residue]
	return ok
}

// Result holds parsed records and what was dropped on the way.
type Result struct {
	Mutations []model.Mutation
	Excluded  int
}

// Parse converts rows into mutations, dropping excluded mutant residues.
func Parse(rows []model.Row, exclude ExclusionSet) (Result, error) {
	res := Result{Mutations: make([]model.Mutation, 0, len(rows))}
	for _, row := range rows {
		m, err := ParseCode(row.Code)
		if err != nil {
			return Result{}, fmt.Errorf("line %d: %w", row.Line, err)
		}
		if exclude.Contains(m.Mutant) {
			res.Excluded++
			continue
		}
		m.DDG = row.DDG
		m.Missing = row.Missing
		m.Line = row.Line
		res.Mutations = append(res.Mutations, m)
	}
	return res, nil
}
