package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/IstiN/dmtools-sub007/internal/domain"
)

// Visualizer renders a written report document. Rendering runs after the JSON
// is on disk and must never fail the job.
type Visualizer interface {
	Render(ctx context.Context, path string) error
}

// TableVisualizer prints a per-period metric table for a report document.
type TableVisualizer struct {
	Out io.Writer
}

// NewTableVisualizer creates a visualizer writing to stdout.
func NewTableVisualizer() *TableVisualizer {
	return &TableVisualizer{Out: os.Stdout}
}

// Render reads the document back and prints one row per (period, metric).
func (v *TableVisualizer) Render(_ context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read report %s: %w", path, err)
	}
	var output domain.ReportOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return fmt.Errorf("failed to parse report %s: %w", path, err)
	}

	fmt.Fprintf(v.Out, "\n%s (%s to %s)\n\n", output.Name, output.StartDate, output.EndDate)

	table := tablewriter.NewWriter(v.Out)
	table.SetHeader([]string{"Period", "Metric", "Count", "Total Weight", "Contributors"})
	for _, period := range output.Periods {
		labels := make([]string, 0, len(period.Metrics))
		for label := range period.Metrics {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			sum := period.Metrics[label]
			table.Append([]string{
				period.Name,
				label,
				fmt.Sprintf("%d", sum.Count),
				fmt.Sprintf("%.2f", sum.TotalWeight),
				fmt.Sprintf("%d", len(sum.Contributors)),
			})
		}
	}
	table.Render()
	return nil
}
