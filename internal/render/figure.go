// Package render turns a ddG matrix into an HTML (Plotly) or PNG heat map.
package render

import (
	"encoding/json"

	"github.com/verte-zerg/ddgheat/internal/colorscale"
	"github.com/verte-zerg/ddgheat/internal/model"
)

const (
	xAxisTitle     = "Position"
	yAxisTitle     = "Mutated to"
	colorBarTitle  = "ΔΔG (kcal/mol)"
	defaultWidth   = 2000
	defaultHeight  = 600
	defaultTick    = 3
	defaultMargin  = 50
	tickAngle      = 45
	containerWidth = 1200
)

// Options controls chart geometry and labeling.
type Options struct {
	Title          string
	Width          int
	Height         int
	TickEvery      int
	ContainerWidth int
}

// DefaultOptions returns the stock chart geometry.
func DefaultOptions(title string) Options {
	return Options{
		Title:          title,
		Width:          defaultWidth,
		Height:         defaultHeight,
		TickEvery:      defaultTick,
		ContainerWidth: containerWidth,
	}
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	if o.TickEvery <= 0 {
		o.TickEvery = defaultTick
	}
	if o.ContainerWidth <= 0 {
		o.ContainerWidth = containerWidth
	}
	return o
}

// Figure is a Plotly figure with a single heatmap trace.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a Plotly heatmap trace. Missing cells encode as null.
type Trace struct {
	Type          string       `json:"type"`
	Z             [][]*float64 `json:"z"`
	X             []string     `json:"x"`
	Y             []string     `json:"y"`
	ZMin          float64      `json:"zmin"`
	ZMax          float64      `json:"zmax"`
	ColorScale    [][2]any     `json:"colorscale"`
	TextTemplate  string       `json:"texttemplate"`
	HoverTemplate string       `json:"hovertemplate"`
	HoverOnGaps   bool         `json:"hoverongaps"`
	ColorBar      ColorBar     `json:"colorbar"`
}

// ColorBar labels the legend.
type ColorBar struct {
	Title Text `json:"title"`
}

// Text is a Plotly title object.
type Text struct {
	Text string `json:"text"`
}

// Layout is the subset of Plotly layout the heat map uses.
type Layout struct {
	Title        Text    `json:"title"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	XAxis        Axis    `json:"xaxis"`
	YAxis        Axis    `json:"yaxis"`
	Margin       Margin  `json:"margin"`
	PaperBGColor string  `json:"paper_bgcolor"`
	PlotBGColor  string  `json:"plot_bgcolor"`
	Font         FontCfg `json:"font"`
}

// Axis configures tick placement and interaction for one axis.
type Axis struct {
	Title      Text     `json:"title"`
	TickMode   string   `json:"tickmode"`
	TickVals   []string `json:"tickvals"`
	TickText   []string `json:"ticktext,omitempty"`
	TickAngle  int      `json:"tickangle,omitempty"`
	ShowGrid   bool     `json:"showgrid"`
	FixedRange bool     `json:"fixedrange"`
	AutoRange  string   `json:"autorange,omitempty"`
	Type       string   `json:"type"`
}

// Margin holds plot margins in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// FontCfg sets the global font.
type FontCfg struct {
	Family string `json:"family"`
}

// NewFigure builds the Plotly figure for the matrix.
func NewFigure(m *model.Matrix, scale colorscale.Scale, opts Options) Figure {
	opts = opts.normalized()
	z := make([][]*float64, len(m.Residues))
	for r := range m.Residues {
		z[r] = make([]*float64, len(m.Positions))
		for c := range m.Positions {
			cell := m.At(r, c)
			if !cell.Present {
				continue
			}
			v := cell.Value
			z[r][c] = &v
		}
	}
	trace := Trace{
		Type:          "heatmap",
		Z:             z,
		X:             m.Positions,
		Y:             m.Residues,
		ZMin:          scale.Min,
		ZMax:          scale.Max,
		ColorScale:    scale.Plotly(),
		TextTemplate:  "%{z}",
		HoverTemplate: xAxisTitle + ": %{x}<br>" + yAxisTitle + ": %{y}<br>" + colorBarTitle + ": %{z}<extra></extra>",
		ColorBar:      ColorBar{Title: Text{Text: colorBarTitle}},
	}
	layout := Layout{
		Title:  Text{Text: opts.Title},
		Width:  opts.Width,
		Height: opts.Height,
		XAxis: Axis{
			Title:     Text{Text: xAxisTitle},
			TickMode:  "array",
			TickVals:  m.Positions,
			TickText:  ThinLabels(m.Positions, opts.TickEvery),
			TickAngle: tickAngle,
			Type:      "category",
		},
		YAxis: Axis{
			Title:     Text{Text: yAxisTitle},
			TickMode:  "array",
			TickVals:  m.Residues,
			AutoRange: "reversed",
			Type:      "category",
		},
		Margin:       Margin{L: defaultMargin, R: defaultMargin, T: defaultMargin, B: defaultMargin},
		PaperBGColor: "white",
		PlotBGColor:  "white",
		Font:         FontCfg{Family: "Arial, sans-serif"},
	}
	return Figure{Data: []Trace{trace}, Layout: layout}
}

// ThinLabels blanks all labels except every n-th, starting with the first.
func ThinLabels(labels []string, every int) []string {
	if every <= 1 {
		return append([]string(nil), labels...)
	}
	out := make([]string, len(labels))
	for i, label := range labels {
		if i%every == 0 {
			out[i] = label
		}
	}
	return out
}

// JSON encodes the figure.
func (f Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}
