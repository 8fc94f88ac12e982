// Package colorscale builds the diverging color scale for ddG heat maps.
//
// Negative (stabilizing) values run from dark blue to white and positive
// (destabilizing) values from white to dark red, with white pinned at zero.
package colorscale

import (
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/verte-zerg/ddgheat/internal/model"
)

// ErrUndefinedRange is returned when no cell carries a value.
var ErrUndefinedRange = errors.New("undefined color range")

// Blues and Reds sampled at 0, .25, .5, .75 and 1 of the ColorBrewer
// 9-class sequential palettes (the Plotly "Blues" and "Reds" scales).
var (
	bluesToWhite = []drawing.Color{
		{R: 8, G: 48, B: 107, A: 255},
		{R: 33, G: 113, B: 181, A: 255},
		{R: 107, G: 174, B: 214, A: 255},
		{R: 198, G: 219, B: 239, A: 255},
		{R: 247, G: 251, B: 255, A: 255},
	}
	whiteToReds = []drawing.Color{
		{R: 255, G: 245, B: 240, A: 255},
		{R: 252, G: 187, B: 161, A: 255},
		{R: 251, G: 106, B: 74, A: 255},
		{R: 203, G: 24, B: 29, A: 255},
		{R: 103, G: 0, B: 13, A: 255},
	}
)

// Stop is a color anchored at a normalized position in [0, 1].
type Stop struct {
	Pos   float64
	Color drawing.Color
}

// Scale maps values in [Min, Max] to colors.
type Scale struct {
	Min   float64
	Max   float64
	Stops []Stop
	// Centered is false when the range does not contain zero, in which case
	// only one half of the diverging scale is used.
	Centered bool
}

// RangeOf returns the minimum and maximum over present cells.
func RangeOf(m *model.Matrix) (float64, float64, error) {
	zmin := math.Inf(1)
	zmax := math.Inf(-1)
	for _, row := range m.Cells {
		for _, cell := range row {
			if !cell.Present {
				continue
			}
			if cell.Value < zmin {
				zmin = cell.Value
			}
			if cell.Value > zmax {
				zmax = cell.Value
			}
		}
	}
	if math.IsInf(zmin, 1) {
		return 0, 0, fmt.Errorf("%w: matrix has no values", ErrUndefinedRange)
	}
	return zmin, zmax, nil
}

// FromMatrix derives the diverging scale for a matrix.
func FromMatrix(m *model.Matrix) (Scale, error) {
	zmin, zmax, err := RangeOf(m)
	if err != nil {
		return Scale{}, err
	}
	return Diverging(zmin, zmax), nil
}

// Diverging builds a blue-white-red scale over [zmin, zmax] with white at zero.
// A degenerate range is widened by one on each side.
func Diverging(zmin, zmax float64) Scale {
	if math.Abs(zmax-zmin) < 1e-9 {
		zmin--
		zmax++
	}
	s := Scale{Min: zmin, Max: zmax, Centered: zmin <= 0 && zmax >= 0}
	switch {
	case zmin >= 0:
		s.Stops = spread(whiteToReds, 0, 1)
	case zmax <= 0:
		s.Stops = spread(bluesToWhite, 0, 1)
	default:
		zero := (0 - zmin) / (zmax - zmin)
		s.Stops = spread(bluesToWhite, 0, zero)
		// The red half starts on white again; drop it.
		s.Stops = append(s.Stops, spread(whiteToReds, zero, 1)[1:]...)
	}
	s.Stops[len(s.Stops)-1].Pos = 1
	return s
}

func spread(colors []drawing.Color, from, to float64) []Stop {
	stops := make([]Stop, len(colors))
	last := float64(len(colors) - 1)
	for i, c := range colors {
		stops[i] = Stop{Pos: from + (to-from)*float64(i)/last, Color: c}
	}
	return stops
}

// Normalize maps v into [0, 1] relative to the scale range.
func (s Scale) Normalize(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	t := (v - s.Min) / (s.Max - s.Min)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// At returns the interpolated color for v.
func (s Scale) At(v float64) drawing.Color {
	if len(s.Stops) == 0 {
		return drawing.Color{R: 255, G: 255, B: 255, A: 255}
	}
	t := s.Normalize(v)
	if t <= s.Stops[0].Pos {
		return s.Stops[0].Color
	}
	for i := 1; i < len(s.Stops); i++ {
		lo, hi := s.Stops[i-1], s.Stops[i]
		if t > hi.Pos {
			continue
		}
		span := hi.Pos - lo.Pos
		if span <= 0 {
			return hi.Color
		}
		return lerp(lo.Color, hi.Color, (t-lo.Pos)/span)
	}
	return s.Stops[len(s.Stops)-1].Color
}

// Plotly returns the scale as Plotly colorscale pairs.
func (s Scale) Plotly() [][2]any {
	out := make([][2]any, 0, len(s.Stops))
	for _, stop := range s.Stops {
		out = append(out, [2]any{stop.Pos, RGB(stop.Color)})
	}
	return out
}

// RGB formats a color as a CSS rgb() value.
func RGB(c drawing.Color) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// Hex formats a color as #rrggbb.
func Hex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Luminance returns the relative luminance of c in [0, 1].
func Luminance(c drawing.Color) float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}
