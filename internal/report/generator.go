package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/IstiN/dmtools-sub007/internal/aggregator"
	"github.com/IstiN/dmtools-sub007/internal/collector"
	"github.com/IstiN/dmtools-sub007/internal/domain"
	"github.com/IstiN/dmtools-sub007/internal/storage"
)

// ReportResult pairs an assembled report document with the path it was
// written to. It is the shape API responses carry per produced document.
type ReportResult struct {
	Output *domain.ReportOutput `json:"output"`
	Path   string               `json:"path"`
}

// Generator drives the whole pipeline: one collection pass, then one period
// generation + aggregation + document write per configured grouping.
type Generator struct {
	registry   *collector.Registry
	store      storage.Storage
	visualizer Visualizer
	outputDir  string
	now        func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithStorage records every produced document as a run, best-effort.
func WithStorage(store storage.Storage) Option {
	return func(g *Generator) { g.store = store }
}

// WithVisualizer renders every written document, best-effort.
func WithVisualizer(v Visualizer) Option {
	return func(g *Generator) { g.visualizer = v }
}

// WithOutputDir sets the directory used when a job omits output.outputPath.
func WithOutputDir(dir string) Option {
	return func(g *Generator) { g.outputDir = dir }
}

// WithClock fixes the generator's notion of "now"; used by tests and by
// callers that need reproducible end-date defaults.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a report generator over a source registry.
func NewGenerator(registry *collector.Registry, opts ...Option) *Generator {
	g := &Generator{
		registry:  registry,
		outputDir: "./reports",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateReports runs the job and produces one document per configured
// grouping. Collection happens exactly once regardless of the grouping count;
// any collection or configuration failure aborts the call before a single
// file is written.
func (g *Generator) GenerateReports(ctx context.Context, job *JobConfig) ([]ReportResult, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	startDate, err := job.ParsedStartDate()
	if err != nil {
		return nil, err
	}

	// Resolve a missing end date to "today" once, shared by all groupings.
	endDate, err := job.ParsedEndDate()
	if err != nil {
		return nil, err
	}
	end := g.now()
	if endDate != nil {
		end = *endDate
	}

	coordinator := collector.NewCoordinator(g.registry)
	data, err := coordinator.Collect(ctx, job.DataSources, job.Aliases)
	if err != nil {
		return nil, err
	}

	groupings := []domain.GroupingConfig(job.TimeGrouping)
	multi := len(groupings) > 1

	results := make([]ReportResult, 0, len(groupings))
	for _, grouping := range groupings {
		periods, err := aggregator.GeneratePeriods(grouping, startDate, end)
		if err != nil {
			return nil, err
		}

		periodResults := make([]*domain.PeriodResult, 0, len(periods))
		for _, p := range periods {
			periodResults = append(periodResults,
				aggregator.BuildPeriodResult(p, data, job.Output, job.Aggregation.Formula, job.Employees))
		}
		aggregated := aggregator.AggregateAcrossPeriods(periodResults, data, job.Aggregation.Formula, job.Employees)

		name := job.ReportName
		if multi {
			name = name + " " + string(grouping.Type)
		}

		output := &domain.ReportOutput{
			Name:          name,
			GeneratedAt:   g.now(),
			StartDate:     job.StartDate,
			EndDate:       end.Format(domain.DateFormat),
			Periods:       periodResults,
			Aggregated:    aggregated,
			WeightMetrics: data.SortedWeightLabels(),
		}

		path, err := g.writeDocument(job.Output.OutputPath, output)
		if err != nil {
			return nil, err
		}
		results = append(results, ReportResult{Output: output, Path: path})

		g.recordRun(ctx, job, grouping, output, path)
	}

	// Rendering is strictly best-effort: the JSON documents above are already
	// on disk and are never rolled back.
	if g.visualizer != nil {
		for _, r := range results {
			if err := g.visualizer.Render(ctx, r.Path); err != nil {
				log.Printf("Warning: failed to visualize %s: %v", r.Path, err)
			}
		}
	}

	return results, nil
}

// GenerateReport runs the job and returns the first grouping's output, for
// callers that configure a single grouping.
func (g *Generator) GenerateReport(ctx context.Context, job *JobConfig) (*domain.ReportOutput, error) {
	results, err := g.GenerateReports(ctx, job)
	if err != nil {
		return nil, err
	}
	return results[0].Output, nil
}

func (g *Generator) writeDocument(outputPath string, output *domain.ReportOutput) (string, error) {
	dir := outputPath
	if dir == "" {
		dir = g.outputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize report %q: %w", output.Name, err)
	}

	path := filepath.Join(dir, sanitizeName(output.Name)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}

// recordRun persists run history when storage is configured. Failures are
// logged and never fail the job: the document is already written.
func (g *Generator) recordRun(ctx context.Context, job *JobConfig, grouping domain.GroupingConfig, output *domain.ReportOutput, path string) {
	if g.store == nil {
		return
	}
	doc, err := json.Marshal(output)
	if err != nil {
		log.Printf("Warning: failed to serialize run for %q: %v", output.Name, err)
		return
	}
	run := &domain.ReportRun{
		ID:          uuid.New().String(),
		ReportName:  job.ReportName,
		Grouping:    string(grouping.Type),
		Path:        path,
		StartDate:   output.StartDate,
		EndDate:     output.EndDate,
		GeneratedAt: output.GeneratedAt,
		Document:    doc,
	}
	if err := g.store.SaveRun(ctx, run); err != nil {
		log.Printf("Warning: failed to record run for %q: %v", output.Name, err)
	}
}

func sanitizeName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
