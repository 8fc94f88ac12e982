package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

// PlotlyCDN is the script reference the HTML document loads Plotly from.
const PlotlyCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// ErrOutputWrite is returned when an output file cannot be written.
var ErrOutputWrite = errors.New("output write failure")

// Document is a standalone HTML page wrapping one figure in a scroll container.
type Document struct {
	Title          string
	ContainerWidth int
	Figure         Figure
}

type documentView struct {
	Title          string
	ContainerWidth int
	ChartWidth     int
	ChartHeight    int
	PlotlyURL      string
	FigureJSON     template.JS
}

var documentTemplate = template.Must(template.New("heatmap").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="{{.PlotlyURL}}" charset="utf-8"></script>
    <style>
        .scroll-container {
            width: {{.ContainerWidth}}px;
            overflow-x: auto;
            border: 1px solid #ccc;
            padding: 10px;
        }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <div class="scroll-container">
        <div id="heatmap" class="plotly-graph-div" style="width: {{.ChartWidth}}px; height: {{.ChartHeight}}px;"></div>
        <script>
            (function () {
                var fig = {{.FigureJSON}};
                Plotly.newPlot("heatmap", fig.data, fig.layout, {responsive: false});
            })();
        </script>
    </div>
</body>
</html>
`))

// NewDocument wraps a figure built from opts.
func NewDocument(fig Figure, opts Options) Document {
	opts = opts.normalized()
	return Document{
		Title:          opts.Title,
		ContainerWidth: opts.ContainerWidth,
		Figure:         fig,
	}
}

// WriteHTML renders the document to w.
func WriteHTML(w io.Writer, doc Document) error {
	figJSON, err := doc.Figure.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode figure: %w", err)
	}
	view := documentView{
		Title:          doc.Title,
		ContainerWidth: doc.ContainerWidth,
		ChartWidth:     doc.Figure.Layout.Width,
		ChartHeight:    doc.Figure.Layout.Height,
		PlotlyURL:      PlotlyCDN,
		FigureJSON:     template.JS(figJSON),
	}
	return documentTemplate.Execute(w, view)
}

// WriteFile renders the document to path, replacing any existing file.
func WriteFile(path string, doc Document) error {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, doc); err != nil {
		return err
	}
	return writeAtomic(path, "heatmap-*.html", func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeAtomic(path, pattern string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create output dir: %w", ErrOutputWrite, err)
	}
	tmpFile, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %w", ErrOutputWrite, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := write(tmpFile); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrOutputWrite, path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %w", ErrOutputWrite, path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("%w: failed to set mode on %s: %w", ErrOutputWrite, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", ErrOutputWrite, path, err)
	}
	return nil
}
