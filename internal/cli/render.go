package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// renderStats prints per-operation counts and the final store size.
func renderStats(w io.Writer, summary types.RunSummary) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Operation", "Count", "Share"})
	total := summary.Counts.Total()
	for _, row := range []struct {
		op types.Op
		n  int
	}{
		{types.OpAdd, summary.Counts.Add},
		{types.OpGet, summary.Counts.Get},
		{types.OpRemove, summary.Counts.Remove},
		{types.OpReverse, summary.Counts.Reverse},
	} {
		t.AppendRow(table.Row{row.op, row.n, share(row.n, total)})
	}
	t.AppendFooter(table.Row{"Total", total, ""})
	t.Render()

	_, err := fmt.Fprintf(w, "final store size: %d (%s)\n",
		summary.FinalSize, summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	return err
}

func share(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
}

// renderRuns prints archived runs, oldest first.
func renderRuns(w io.Writer, runs []types.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "(0 runs)")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Run", "Started", "Profile", "Seed", "Iterations", "Add", "Get", "Remove", "Reverse", "Final size"})
	for _, r := range runs {
		seed := "-"
		if r.Seed != 0 {
			seed = fmt.Sprint(r.Seed)
		}
		t.AppendRow(table.Row{
			r.RunID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Profile,
			seed,
			r.Iterations,
			r.Counts.Add, r.Counts.Get, r.Counts.Remove, r.Counts.Reverse,
			r.FinalSize,
		})
	}
	t.Render()
	_, err := fmt.Fprintf(w, "(%d runs)\n", len(runs))
	return err
}
