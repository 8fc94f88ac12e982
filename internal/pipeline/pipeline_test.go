package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/verte-zerg/ddgheat/internal/colorscale"
	"github.com/verte-zerg/ddgheat/internal/dataset"
	"github.com/verte-zerg/ddgheat/internal/model"
	"github.com/verte-zerg/ddgheat/internal/mutation"
	"github.com/verte-zerg/ddgheat/internal/pivot"
	"github.com/verte-zerg/ddgheat/internal/render"
	"github.com/verte-zerg/ddgheat/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type failingRecorder struct {
	calls int
}

func (f *failingRecorder) InsertRun(context.Context, model.Run) (int64, error) {
	f.calls++
	return 0, errors.New("disk full")
}

func writeInput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "1CSE.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func baseConfig(input string) model.RenderConfig {
	return model.RenderConfig{
		InputPath:  input,
		OutputPath: filepath.Join(filepath.Dir(input), "1CSE_mutation_ddG_heatmap.html"),
		Title:      "Protein Mutation ΔΔG Predictions (1CSE)",
		Exclude:    mutation.DefaultExclude,
	}
}

func TestRunEndToEnd(t *testing.T) {
	input := writeInput(t, "mutation,ddG_pred\nA_E_1_D,-1.0\nA_E_1_C,2.0\nB_E_2_D,0.5\n")
	cfg := baseConfig(input)
	cfg.PNGPath = filepath.Join(filepath.Dir(input), "heatmap.png")

	st, err := store.Open(filepath.Join(t.TempDir(), "ddgheat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	res, err := Run(context.Background(), cfg, st, zap.NewNop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := &model.Matrix{
		Residues:  []string{"D"},
		Positions: []string{"A1_E", "B2_E"},
		Cells:     [][]model.Cell{{{Value: -1.0, Present: true}, {Value: 0.5, Present: true}}},
	}
	if diff := cmp.Diff(want, res.Matrix); diff != "" {
		t.Fatalf("unexpected matrix (-want +got):\n%s", diff)
	}
	if res.Rows != 3 || res.Excluded != 1 {
		t.Fatalf("unexpected counts: rows=%d excluded=%d", res.Rows, res.Excluded)
	}
	if res.Scale.Min != -1.0 || res.Scale.Max != 0.5 || !res.Scale.Centered {
		t.Fatalf("unexpected scale: %+v", res.Scale)
	}

	data, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"A1_E","B2_E"`) || strings.Contains(out, `"C"`) {
		t.Fatalf("unexpected figure payload")
	}
	if strings.Count(out, `class="scroll-container"`) != 1 {
		t.Fatalf("expected exactly one scroll container")
	}
	if _, err := os.Stat(cfg.PNGPath); err != nil {
		t.Fatalf("expected png output: %v", err)
	}

	runs, err := st.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Cells != 2 || runs[0].DupPolicy != model.DuplicateLast {
		t.Fatalf("unexpected history: %+v", runs)
	}
}

func TestRunHistoryFailureIsNotFatal(t *testing.T) {
	input := writeInput(t, "mutation,ddG_pred\nA_E_1_D,-1.0\n")
	rec := &failingRecorder{}
	if _, err := Run(context.Background(), baseConfig(input), rec, zap.NewNop()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec.calls != 1 {
		t.Fatalf("expected one record attempt, got %d", rec.calls)
	}
}

func TestRunDuplicatePolicy(t *testing.T) {
	input := writeInput(t, "mutation,ddG_pred\nA_E_1_D,-1.0\nA_E_1_D,2.0\n")
	cfg := baseConfig(input)

	res, err := Prepare(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if got := res.Matrix.At(0, 0).Value; got != 2.0 || res.Duplicates != 1 {
		t.Fatalf("expected last write to win, got %v (dups=%d)", got, res.Duplicates)
	}

	cfg.Duplicates = model.DuplicateError
	if _, err := Run(context.Background(), cfg, nil, zap.NewNop()); !errors.Is(err, pivot.ErrDuplicateCell) {
		t.Fatalf("expected ErrDuplicateCell, got %v", err)
	}
	if _, err := os.Stat(cfg.OutputPath); !os.IsNotExist(err) {
		t.Fatalf("expected no output after failure, got %v", err)
	}
}

func TestRunNamedErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		body string
		want error
	}{
		{name: "missing column", body: "mutation,score\nA_E_1_D,1\n", want: dataset.ErrMissingColumn},
		{name: "malformed code", body: "mutation,ddG_pred\nA_E_1,1\n", want: mutation.ErrMalformedCode},
		{name: "empty", body: "mutation,ddG_pred\n", want: dataset.ErrEmptyDataset},
		{name: "all excluded", body: "mutation,ddG_pred\nA_E_1_C,1\nA_E_1_P,1\n", want: dataset.ErrEmptyDataset},
	} {
		t.Run(tc.name, func(t *testing.T) {
			input := writeInput(t, tc.body)
			_, err := Run(context.Background(), baseConfig(input), nil, zap.NewNop())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRunOutputWriteFailure(t *testing.T) {
	input := writeInput(t, "mutation,ddG_pred\nA_E_1_D,-1.0\n")
	cfg := baseConfig(input)
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("seed blocker: %v", err)
	}
	cfg.OutputPath = filepath.Join(blocker, "out.html")
	if _, err := Run(context.Background(), cfg, nil, zap.NewNop()); !errors.Is(err, render.ErrOutputWrite) {
		t.Fatalf("expected ErrOutputWrite, got %v", err)
	}
}

func TestPrepareOneSidedScale(t *testing.T) {
	input := writeInput(t, "mutation,ddG_pred\nA_E_1_D,1.0\nA_E_2_D,2.0\n")
	res, err := Prepare(baseConfig(input), zap.NewNop())
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if res.Scale.Centered {
		t.Fatalf("expected one-sided scale")
	}
	if res.Scale.At(1.0) != colorscale.Diverging(1, 2).Stops[0].Color {
		t.Fatalf("expected minimum to map to the first stop")
	}
}

func TestPreparePositionRanges(t *testing.T) {
	input := writeInput(t, "mutation,ddG_pred\nA_E_10_D,1.0\nA_E_30_D,-2.0\nA_E_50_D,0.5\n")
	cfg := baseConfig(input)
	ranges, err := pivot.ParseRanges("28-35,49-67")
	if err != nil {
		t.Fatalf("parse ranges: %v", err)
	}
	cfg.Positions = ranges
	res, err := Prepare(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if diff := cmp.Diff([]string{"A30_E", "A50_E"}, res.Matrix.Positions); diff != "" {
		t.Fatalf("unexpected positions (-want +got):\n%s", diff)
	}
	if res.OutOfRange != 1 {
		t.Fatalf("expected 1 out-of-range record, got %d", res.OutOfRange)
	}
}

func TestRunTreatsUnreadableValuesAsMissing(t *testing.T) {
	for _, value := range []string{"NaN", "Inf", ""} {
		t.Run("value "+value, func(t *testing.T) {
			input := writeInput(t, "mutation,ddG_pred\nA_E_1_D,-1.0\nA_E_2_D,"+value+"\nB_E_3_D,0.5\n")
			cfg := baseConfig(input)
			res, err := Run(context.Background(), cfg, nil, zap.NewNop())
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if diff := cmp.Diff([]string{"A1_E", "A2_E", "B3_E"}, res.Matrix.Positions); diff != "" {
				t.Fatalf("unexpected positions (-want +got):\n%s", diff)
			}
			if res.Matrix.At(0, 1).Present {
				t.Fatalf("expected missing cell for %q", value)
			}
			if res.Scale.Min != -1.0 || res.Scale.Max != 0.5 {
				t.Fatalf("range must ignore missing cells: %+v", res.Scale)
			}
			data, err := os.ReadFile(cfg.OutputPath)
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			if !strings.Contains(string(data), "[-1,null,0.5]") {
				t.Fatalf("expected null for the missing cell")
			}
		})
	}
}

func TestRunAllValuesMissing(t *testing.T) {
	input := writeInput(t, "mutation,ddG_pred\nA_E_1_D,NaN\nA_E_2_D,\n")
	if _, err := Run(context.Background(), baseConfig(input), nil, zap.NewNop()); !errors.Is(err, colorscale.ErrUndefinedRange) {
		t.Fatalf("expected ErrUndefinedRange, got %v", err)
	}
}
