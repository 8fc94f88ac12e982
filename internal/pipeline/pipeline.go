// Package pipeline runs the load, parse, pivot, color and render stages.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/ddgheat/internal/colorscale"
	"github.com/verte-zerg/ddgheat/internal/dataset"
	"github.com/verte-zerg/ddgheat/internal/model"
	"github.com/verte-zerg/ddgheat/internal/mutation"
	"github.com/verte-zerg/ddgheat/internal/pivot"
	"github.com/verte-zerg/ddgheat/internal/render"
)

// Recorder persists completed runs.
type Recorder interface {
	InsertRun(ctx context.Context, run model.Run) (int64, error)
}

// Result describes a prepared or rendered matrix.
type Result struct {
	Matrix     *model.Matrix
	Scale      colorscale.Scale
	OutputPath string
	PNGPath    string
	Rows       int
	Excluded   int
	Duplicates int
	OutOfRange int
}

// Prepare loads the input and builds the matrix and color scale without
// writing anything.
func Prepare(cfg model.RenderConfig, logger *zap.Logger) (Result, error) {
	rows, err := dataset.Load(cfg.InputPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load input: %w", err)
	}
	logger.Debug("Loaded input", zap.String("path", cfg.InputPath), zap.Int("rows", len(rows)))

	parsed, err := mutation.Parse(rows, mutation.NewExclusionSet(cfg.Exclude))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse mutations: %w", err)
	}
	logger.Debug("Parsed mutations",
		zap.Int("kept", len(parsed.Mutations)),
		zap.Int("excluded", parsed.Excluded),
		zap.String("exclude", cfg.Exclude))

	piv, err := pivot.Build(parsed.Mutations, pivot.Options{
		Duplicates: cfg.Duplicates,
		Positions:  cfg.Positions,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to build matrix: %w", err)
	}
	if piv.Duplicates > 0 {
		logger.Warn("Duplicate cells in input",
			zap.Int("count", piv.Duplicates),
			zap.String("policy", string(policyOrDefault(cfg.Duplicates))))
	}
	if piv.OutOfRange > 0 {
		logger.Debug("Dropped positions outside ranges", zap.Int("count", piv.OutOfRange))
	}

	scale, err := colorscale.FromMatrix(piv.Matrix)
	if err != nil {
		return Result{}, fmt.Errorf("failed to derive color scale: %w", err)
	}
	if !scale.Centered {
		logger.Warn("Values do not straddle zero; using a one-sided color scale",
			zap.Float64("zmin", scale.Min),
			zap.Float64("zmax", scale.Max))
	}
	logger.Debug("Built matrix",
		zap.Int("residues", len(piv.Matrix.Residues)),
		zap.Int("positions", len(piv.Matrix.Positions)),
		zap.Int("cells", piv.Matrix.Present()))

	return Result{
		Matrix:     piv.Matrix,
		Scale:      scale,
		Rows:       len(rows),
		Excluded:   parsed.Excluded,
		Duplicates: piv.Duplicates,
		OutOfRange: piv.OutOfRange,
	}, nil
}

// Run prepares the matrix, writes the HTML document (and PNG when
// configured), and records the run when rec is non-nil. History failures are
// logged, not returned.
func Run(ctx context.Context, cfg model.RenderConfig, rec Recorder, logger *zap.Logger) (Result, error) {
	res, err := Prepare(cfg, logger)
	if err != nil {
		return Result{}, err
	}

	opts := render.Options{
		Title:          cfg.Title,
		Width:          cfg.Width,
		Height:         cfg.Height,
		TickEvery:      cfg.TickEvery,
		ContainerWidth: cfg.ContainerWidth,
	}
	fig := render.NewFigure(res.Matrix, res.Scale, opts)
	if err := render.WriteFile(cfg.OutputPath, render.NewDocument(fig, opts)); err != nil {
		return Result{}, err
	}
	res.OutputPath = cfg.OutputPath
	logger.Info("Wrote heatmap", zap.String("path", cfg.OutputPath))

	if cfg.PNGPath != "" {
		if err := render.WritePNG(cfg.PNGPath, res.Matrix, res.Scale, opts); err != nil {
			return Result{}, err
		}
		res.PNGPath = cfg.PNGPath
		logger.Info("Wrote image", zap.String("path", cfg.PNGPath))
	}

	if rec != nil {
		run := model.Run{
			RenderedAt:   time.Now().UTC(),
			InputPath:    cfg.InputPath,
			OutputPath:   res.OutputPath,
			PNGPath:      res.PNGPath,
			Rows:         res.Rows,
			Excluded:     res.Excluded,
			Duplicates:   res.Duplicates,
			Residues:     len(res.Matrix.Residues),
			Positions:    len(res.Matrix.Positions),
			Cells:        res.Matrix.Present(),
			ZMin:         res.Scale.Min,
			ZMax:         res.Scale.Max,
			Centered:     res.Scale.Centered,
			DupPolicy:    policyOrDefault(cfg.Duplicates),
			PositionSpec: pivot.FormatRanges(cfg.Positions),
		}
		if _, err := rec.InsertRun(ctx, run); err != nil {
			logger.Warn("Failed to record run", zap.Error(err))
		}
	}
	return res, nil
}

func policyOrDefault(p model.DuplicatePolicy) model.DuplicatePolicy {
	if p == "" {
		return model.DuplicateLast
	}
	return p
}
