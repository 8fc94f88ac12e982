package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/ddgheat/internal/model"
)

// RenderRuns prints recorded render runs, newest first.
func RenderRuns(w io.Writer, runs []model.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	headers := []string{"ID", "Rendered", "Input", "Rows", "Excl", "Dups", "Shape", "Range", "Policy", "Output"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rangeText := fmt.Sprintf("%.2f..%.2f", r.ZMin, r.ZMax)
		if !r.Centered {
			rangeText += "*"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.ID),
			r.RenderedAt.Local().Format("2006-01-02 15:04"),
			r.InputPath,
			fmt.Sprintf("%d", r.Rows),
			fmt.Sprintf("%d", r.Excluded),
			fmt.Sprintf("%d", r.Duplicates),
			fmt.Sprintf("%dx%d", r.Residues, r.Positions),
			rangeText,
			string(r.DupPolicy),
			r.OutputPath,
		})
	}
	rightAlign := map[int]bool{0: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
