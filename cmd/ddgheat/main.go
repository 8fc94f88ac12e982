// Package main provides the CLI entrypoint for ddgheat.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/verte-zerg/ddgheat/internal/config"
	"github.com/verte-zerg/ddgheat/internal/model"
	"github.com/verte-zerg/ddgheat/internal/mutation"
	"github.com/verte-zerg/ddgheat/internal/pipeline"
	"github.com/verte-zerg/ddgheat/internal/pivot"
	"github.com/verte-zerg/ddgheat/internal/render"
	"github.com/verte-zerg/ddgheat/internal/stats"
	"github.com/verte-zerg/ddgheat/internal/store"
	"github.com/verte-zerg/ddgheat/internal/viewer"
)

const (
	defaultInput          = "1CSE.csv"
	defaultDuplicates     = string(model.DuplicateLast)
	defaultTickEvery      = 3
	defaultWidth          = 2000
	defaultHeight         = 600
	defaultContainerWidth = 1200
	defaultHistoryLast    = 20
	defaultPreviewTop     = 10
)

var (
	configPath string
	dbPath     string
	verbose    bool

	renderInput      string
	renderExclude    string
	renderPositions  string
	renderDuplicates string

	renderOutput         string
	renderTitle          string
	renderPNG            string
	renderTickEvery      int
	renderWidth          int
	renderHeight         int
	renderContainerWidth int
	renderOpen           bool
	renderView           bool
	renderNoHistory      bool

	previewOffset int
	previewCols   int
	previewTop    int
	previewColor  bool

	historyLast int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ddgheat",
		Short:         "Render mutation ddG predictions as a heat map",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runRenderCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	pf.StringVar(&dbPath, "db", config.DefaultDBPath(), "run history database path")
	pf.BoolVar(&verbose, "verbose", false, "enable debug logging")
	pf.StringVar(&renderInput, "input", defaultInput, "prediction CSV with mutation and ddG_pred columns")
	pf.StringVar(&renderExclude, "exclude", mutation.DefaultExclude, "mutant residues to drop (empty disables)")
	pf.StringVar(&renderPositions, "positions", "", "inclusive position ranges to keep, e.g. 28-35,49-67")
	pf.StringVar(&renderDuplicates, "duplicates", defaultDuplicates, "duplicate cell policy: last, first or error")

	rootCmd.Flags().StringVar(&renderOutput, "output", "", "HTML output path (default: <cwd>/<stem>_mutation_ddG_heatmap.html)")
	rootCmd.Flags().StringVar(&renderTitle, "title", "", "chart title (default: derived from input name)")
	rootCmd.Flags().StringVar(&renderPNG, "png", "", "also write a static PNG to this path")
	rootCmd.Flags().IntVar(&renderTickEvery, "tick-every", defaultTickEvery, "show every Nth position label")
	rootCmd.Flags().IntVar(&renderWidth, "width", defaultWidth, "chart width in pixels")
	rootCmd.Flags().IntVar(&renderHeight, "height", defaultHeight, "chart height in pixels")
	rootCmd.Flags().IntVar(&renderContainerWidth, "container-width", defaultContainerWidth, "scroll container width in pixels")
	rootCmd.Flags().BoolVar(&renderOpen, "open", false, "open the HTML output in a browser")
	rootCmd.Flags().BoolVar(&renderView, "view", false, "browse the matrix in the terminal after rendering")
	rootCmd.Flags().BoolVar(&renderNoHistory, "no-history", false, "do not record this run")

	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runRenderCmd(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applySourceConfig(cmd, fileCfg.Render)
	applyIntConfig(cmd, "tick-every", &renderTickEvery, fileCfg.Render.TickEvery)
	applyIntConfig(cmd, "width", &renderWidth, fileCfg.Render.Width)
	applyIntConfig(cmd, "height", &renderHeight, fileCfg.Render.Height)
	applyIntConfig(cmd, "container-width", &renderContainerWidth, fileCfg.Render.ContainerWidth)
	applyBoolConfig(cmd, "open", &renderOpen, fileCfg.Render.Open)
	applyBoolConfig(cmd, "no-history", &renderNoHistory, fileCfg.Render.NoHistory)

	cfg, err := sourceConfig()
	if err != nil {
		return err
	}
	cfg.OutputPath = renderOutput
	if cfg.OutputPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
		cfg.OutputPath = config.DefaultOutputPath(cwd, cfg.InputPath)
	}
	cfg.Title = renderTitle
	if cfg.Title == "" {
		cfg.Title = config.DefaultTitle(cfg.InputPath)
	}
	cfg.PNGPath = renderPNG
	cfg.TickEvery = renderTickEvery
	cfg.Width = renderWidth
	cfg.Height = renderHeight
	cfg.ContainerWidth = renderContainerWidth
	cfg.Open = renderOpen
	cfg.View = renderView
	cfg.NoHistory = renderNoHistory

	if err := validateConfig(cfg); err != nil {
		return err
	}

	var rec pipeline.Recorder
	if !cfg.NoHistory {
		st, err := store.Open(dbPath)
		if err != nil {
			logger.Warn("Run history disabled", zap.String("path", dbPath), zap.Error(err))
		} else {
			defer func() {
				if cerr := st.Close(); cerr != nil {
					logger.Warn("Failed to close history db", zap.Error(cerr))
				}
			}()
			rec = st
		}
	}

	res, err := pipeline.Run(cmd.Context(), cfg, rec, logger)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Heatmap saved to %s\n", res.OutputPath); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if cfg.Open {
		if err := render.OpenBrowser(res.OutputPath); err != nil {
			logger.Warn("Could not open browser", zap.Error(err))
		}
	}
	if cfg.View {
		if !isInteractive() {
			logger.Warn("Skipping viewer: not attached to a terminal")
		} else if err := viewer.Run(cfg.Title, res.Matrix, res.Scale); err != nil {
			logger.Warn("Viewer failed", zap.Error(err))
		}
	}
	return nil
}

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print a summary and terminal heat map without writing files",
		Args:  cobra.NoArgs,
		RunE:  runPreviewCmd,
	}
	cmd.Flags().IntVar(&previewOffset, "offset", 0, "first position column to show")
	cmd.Flags().IntVar(&previewCols, "term-width", 0, "heat map width in cells (default: terminal width)")
	cmd.Flags().IntVar(&previewTop, "top", defaultPreviewTop, "number of extreme cells to list")
	cmd.Flags().BoolVar(&previewColor, "color", false, "force ANSI colors")
	return cmd
}

func runPreviewCmd(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applySourceConfig(cmd, fileCfg.Render)
	cfg, err := sourceConfig()
	if err != nil {
		return err
	}
	if previewTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}

	res, err := pipeline.Prepare(cfg, logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderReport(out, res.Matrix, res.Scale, stats.BuildReport(res.Matrix, previewTop)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	opts := stats.HeatmapOptions{Offset: previewOffset, Width: previewCols, Color: previewColor}
	if err := stats.RenderHeatmap(out, res.Matrix, res.Scale, opts); err != nil {
		return fmt.Errorf("failed to write heatmap: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded render runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "number of runs to show (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			_ = cerr
		}
	}()

	runs, err := st.ListRuns(context.Background(), historyLast)
	if err != nil {
		return err
	}
	if err := stats.RenderRuns(cmd.OutOrStdout(), runs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	if err := ensureConfigFile(configPath); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], configPath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

// applySourceConfig fills the flags shared by render and preview.
func applySourceConfig(cmd *cobra.Command, fileCfg config.RenderConfig) {
	applyStringConfig(cmd, "input", &renderInput, fileCfg.Input)
	applyStringConfig(cmd, "exclude", &renderExclude, fileCfg.Exclude)
	applyStringConfig(cmd, "positions", &renderPositions, fileCfg.Positions)
	applyStringConfig(cmd, "duplicates", &renderDuplicates, fileCfg.Duplicates)
}

func sourceConfig() (model.RenderConfig, error) {
	if strings.TrimSpace(renderInput) == "" {
		return model.RenderConfig{}, fmt.Errorf("--input must not be empty")
	}
	ranges, err := pivot.ParseRanges(renderPositions)
	if err != nil {
		return model.RenderConfig{}, fmt.Errorf("invalid --positions value: %w", err)
	}
	policy := model.DuplicatePolicy(strings.ToLower(strings.TrimSpace(renderDuplicates)))
	if err := pivot.ValidatePolicy(policy); err != nil {
		return model.RenderConfig{}, fmt.Errorf("invalid --duplicates value: %w", err)
	}
	return model.RenderConfig{
		InputPath:  renderInput,
		Exclude:    renderExclude,
		Positions:  ranges,
		Duplicates: policy,
	}, nil
}

func validateConfig(cfg model.RenderConfig) error {
	if cfg.TickEvery <= 0 {
		return fmt.Errorf("--tick-every must be > 0")
	}
	if cfg.Width <= 0 {
		return fmt.Errorf("--width must be > 0")
	}
	if cfg.Height <= 0 {
		return fmt.Errorf("--height must be > 0")
	}
	if cfg.ContainerWidth <= 0 {
		return fmt.Errorf("--container-width must be > 0")
	}
	if cfg.PNGPath != "" && filepath.Clean(cfg.PNGPath) == filepath.Clean(cfg.OutputPath) {
		return fmt.Errorf("--png must differ from the HTML output path")
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# ddgheat configuration
# Uncomment a value to enable it. CLI flags override config values.

[render]
# input = %q           # Prediction CSV (mutation, ddG_pred columns)
# exclude = %q              # Mutant residues to drop; "" keeps all
# positions = ""               # Position ranges to keep, e.g. "28-35,49-67"
# duplicates = %q          # Duplicate cell policy: last, first or error
# tick-every = %d               # Show every Nth position label
# width = %d                 # Chart width in pixels
# height = %d                 # Chart height in pixels
# container-width = %d       # Scroll container width in pixels
# open = false                 # Open the HTML output in a browser
# no-history = false           # Do not record runs
`,
		defaultInput,
		mutation.DefaultExclude,
		defaultDuplicates,
		defaultTickEvery,
		defaultWidth,
		defaultHeight,
		defaultContainerWidth,
	)
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func syncLogger(logger *zap.Logger) {
	if err := logger.Sync(); err != nil {
		// stderr may not support fsync.
		_ = err
	}
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
