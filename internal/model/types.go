// Package model defines shared data structures.
package model

import (
	"strconv"
	"time"
)

// DuplicatePolicy decides what happens when two records map to the same cell.
type DuplicatePolicy string

const (
	// DuplicateLast keeps the value of the last record seen.
	DuplicateLast DuplicatePolicy = "last"
	// DuplicateFirst keeps the value of the first record seen.
	DuplicateFirst DuplicatePolicy = "first"
	// DuplicateError rejects the input.
	DuplicateError DuplicatePolicy = "error"
)

// Row is one raw line of the prediction table.
type Row struct {
	Line int
	Code string
	DDG  float64
	// Missing marks an empty, NA-like or non-finite ddG cell.
	Missing bool
}

// Mutation is a parsed point mutation with its predicted ddG.
type Mutation struct {
	WildType string
	Chain    string
	Position int
	// PositionText is the position field as written in the code ("01" stays "01").
	PositionText string
	Mutant       string
	DDG          float64
	Missing      bool
	Line         int
}

// Label returns the position label "{wildtype}{position}_{chain}".
func (m Mutation) Label() string {
	pos := m.PositionText
	if pos == "" {
		pos = strconv.Itoa(m.Position)
	}
	return m.WildType + pos + "_" + m.Chain
}

// PositionRange is an inclusive range of sequence positions.
type PositionRange struct {
	Start int
	End   int
}

// Contains reports whether pos lies within the range.
func (r PositionRange) Contains(pos int) bool {
	return pos >= r.Start && pos <= r.End
}

// Cell holds a rounded value or marks it missing.
type Cell struct {
	Value   float64
	Present bool
}

// Matrix is the residue-by-position pivot of the filtered records.
type Matrix struct {
	Residues  []string
	Positions []string
	Cells     [][]Cell
}

// At returns the cell at row r, column c.
func (m *Matrix) At(r, c int) Cell {
	return m.Cells[r][c]
}

// Present counts cells that hold a value.
func (m *Matrix) Present() int {
	n := 0
	for _, row := range m.Cells {
		for _, cell := range row {
			if cell.Present {
				n++
			}
		}
	}
	return n
}

// RenderConfig defines settings for one render run.
type RenderConfig struct {
	InputPath      string
	OutputPath     string
	PNGPath        string
	Title          string
	Exclude        string
	Positions      []PositionRange
	Duplicates     DuplicatePolicy
	TickEvery      int
	Width          int
	Height         int
	ContainerWidth int
	Open           bool
	View           bool
	NoHistory      bool
}

// Run captures a completed render for the history log.
type Run struct {
	ID           int64
	RenderedAt   time.Time
	InputPath    string
	OutputPath   string
	PNGPath      string
	Rows         int
	Excluded     int
	Duplicates   int
	Residues     int
	Positions    int
	Cells        int
	ZMin         float64
	ZMax         float64
	Centered     bool
	DupPolicy    DuplicatePolicy
	PositionSpec string
}
