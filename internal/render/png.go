package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/verte-zerg/ddgheat/internal/colorscale"
	"github.com/verte-zerg/ddgheat/internal/model"
)

const (
	pngCellWidth   = 44
	pngCellHeight  = 20
	pngPad         = 10
	pngTitleHeight = 24
	pngLegendWidth = 16
	pngLegendGap   = 12
	pngLegendText  = 48
	pngLabelRows   = 2
)

var (
	pngBackground = drawing.Color{R: 255, G: 255, B: 255, A: 255}
	pngMissing    = drawing.Color{R: 242, G: 242, B: 242, A: 255}
	pngInk        = drawing.Color{R: 40, G: 40, B: 40, A: 255}
	pngInkLight   = drawing.Color{R: 250, G: 250, B: 250, A: 255}
)

// EncodePNG draws a static heat map of the matrix and encodes it as PNG.
func EncodePNG(w io.Writer, m *model.Matrix, scale colorscale.Scale, opts Options) error {
	img := DrawHeatmap(m, scale, opts)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// WritePNG writes the static heat map to path, replacing any existing file.
func WritePNG(path string, m *model.Matrix, scale colorscale.Scale, opts Options) error {
	return writeAtomic(path, "heatmap-*.png", func(w io.Writer) error {
		return EncodePNG(w, m, scale, opts)
	})
}

// DrawHeatmap rasterizes the matrix with cell values, thinned position labels
// and a vertical legend bar.
func DrawHeatmap(m *model.Matrix, scale colorscale.Scale, opts Options) *image.RGBA {
	opts = opts.normalized()
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()

	rowLabelWidth := 0
	for _, r := range m.Residues {
		if w := font.MeasureString(face, r).Ceil(); w > rowLabelWidth {
			rowLabelWidth = w
		}
	}
	gridLeft := pngPad + rowLabelWidth + pngPad
	gridTop := pngPad + pngTitleHeight
	gridWidth := len(m.Positions) * pngCellWidth
	gridHeight := len(m.Residues) * pngCellHeight
	legendLeft := gridLeft + gridWidth + pngLegendGap

	width := legendLeft + pngLegendWidth + pngLegendText + pngPad
	if titleWidth := gridLeft + font.MeasureString(face, opts.Title).Ceil() + pngPad; titleWidth > width {
		width = titleWidth
	}
	height := gridTop + gridHeight + pngPad + pngLabelRows*lineHeight + pngPad

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), pngBackground)
	drawText(img, face, opts.Title, gridLeft, pngPad+lineHeight, pngInk)

	for r, residue := range m.Residues {
		y0 := gridTop + r*pngCellHeight
		labelY := y0 + (pngCellHeight+lineHeight)/2 - 2
		drawText(img, face, residue, pngPad, labelY, pngInk)
		for c := range m.Positions {
			x0 := gridLeft + c*pngCellWidth
			rect := image.Rect(x0, y0, x0+pngCellWidth-1, y0+pngCellHeight-1)
			cell := m.At(r, c)
			if !cell.Present {
				fill(img, rect, pngMissing)
				continue
			}
			bg := scale.At(cell.Value)
			fill(img, rect, bg)
			text := formatValue(cell.Value)
			ink := pngInk
			if colorscale.Luminance(bg) < 0.5 {
				ink = pngInkLight
			}
			tw := font.MeasureString(face, text).Ceil()
			drawText(img, face, text, x0+(pngCellWidth-tw)/2, labelY, ink)
		}
	}

	// Alternate rows keep neighbouring labels from colliding.
	labels := ThinLabels(m.Positions, opts.TickEvery)
	shown := 0
	for c, label := range labels {
		if label == "" {
			continue
		}
		x := gridLeft + c*pngCellWidth
		y := gridTop + gridHeight + pngPad + lineHeight*(1+shown%pngLabelRows)
		drawText(img, face, label, x, y, pngInk)
		shown++
	}

	drawLegend(img, face, scale, legendLeft, gridTop, maxInt(gridHeight, 2*lineHeight))
	return img
}

func drawLegend(img *image.RGBA, face font.Face, scale colorscale.Scale, left, top, height int) {
	for y := 0; y < height; y++ {
		t := 1 - float64(y)/float64(maxInt(height-1, 1))
		v := scale.Min + t*(scale.Max-scale.Min)
		fill(img, image.Rect(left, top+y, left+pngLegendWidth, top+y+1), scale.At(v))
	}
	textX := left + pngLegendWidth + 4
	drawText(img, face, formatValue(scale.Max), textX, top+face.Metrics().Ascent.Ceil(), pngInk)
	drawText(img, face, formatValue(scale.Min), textX, top+height, pngInk)
	if scale.Centered && scale.Min < 0 && scale.Max > 0 {
		zeroY := top + int(float64(height-1)*(scale.Max/(scale.Max-scale.Min)))
		drawText(img, face, "0", textX, zeroY+face.Metrics().Ascent.Ceil()/2, pngInk)
	}
}

func fill(img *image.RGBA, rect image.Rectangle, c drawing.Color) {
	draw.Draw(img, rect, image.NewUniform(toRGBA(c)), image.Point{}, draw.Src)
}

func drawText(img *image.RGBA, face font.Face, text string, x, y int, c drawing.Color) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(toRGBA(c)),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func toRGBA(c drawing.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
