package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sternrassler/animelist-etl/pkg/dag"
)

// printSummary writes the run id and one table row per task report.
// Counters are right-aligned.
func printSummary(w io.Writer, runID string, reports []dag.Report) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Task", "Status", "Attempts", "Duration", "Rows"})

	for _, r := range reports {
		tw.AppendRow(table.Row{
			r.TaskID,
			string(r.Status),
			r.Attempts,
			r.Duration.Round(time.Millisecond).String(),
			r.Rows,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	fmt.Fprintf(w, "Run %s\n", runID)
	fmt.Fprintln(w, tw.Render())
}
