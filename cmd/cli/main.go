package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/IstiN/dmtools-sub007/internal/aggregator"
	"github.com/IstiN/dmtools-sub007/internal/collector"
	"github.com/IstiN/dmtools-sub007/internal/config"
	"github.com/IstiN/dmtools-sub007/internal/domain"
	"github.com/IstiN/dmtools-sub007/internal/report"
	"github.com/IstiN/dmtools-sub007/internal/scheduler"
	"github.com/IstiN/dmtools-sub007/internal/storage"
	"github.com/IstiN/dmtools-sub007/internal/storage/postgres"
	"github.com/IstiN/dmtools-sub007/internal/storage/sqlite"
)

var (
	jobFile    string
	outputJSON bool
	showTable  bool
	reportName string
	limitRuns  int
)

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "Productivity report generation tool",
	Long: `A CLI tool for generating productivity reports from development activity.

Reports are described by job files: data sources with metric rules,
calendar groupings, contributor aliases and an output location. Each run
collects source data once, partitions it into calendar periods and writes
one JSON document per grouping.`,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate reports from a job file",
	Long:  `Run the report job described by the given YAML file and write one JSON document per configured time grouping.`,
	RunE:  runGenerate,
}

var periodsCmd = &cobra.Command{
	Use:   "periods [grouping]",
	Short: "Preview period boundaries",
	Long:  `Display the calendar periods a grouping would produce for the job file's date range, without collecting any data.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPeriods,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded report runs",
	Long:  `Display recent report runs recorded in storage, newest first.`,
	RunE:  runListRuns,
}

var runCmd = &cobra.Command{
	Use:   "run [id]",
	Short: "Show a recorded report run",
	Long:  `Display one recorded run including its full report document.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Preview configured data sources",
	Long:  `Build every data source adapter the job file configures, without collecting anything. Sources that fail to build are skipped with a warning so the rest can still be checked.`,
	RunE:  runSources,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [job files...]",
	Short: "Run report jobs on their cron schedules",
	Long:  `Load one or more job files and run each on its cron schedule until interrupted. Job files without a schedule field are rejected.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSchedule,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&jobFile, "job", "job.yaml", "report job file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")

	generateCmd.Flags().BoolVar(&showTable, "table", false, "render each written report as a table")
	runsCmd.Flags().StringVar(&reportName, "report", "", "filter runs by report name")
	runsCmd.Flags().IntVar(&limitRuns, "limit", 20, "maximum number of runs to list")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}

func buildGenerator(cfg *config.Config, store storage.Storage) *report.Generator {
	registry := collector.NewRegistry(cfg.GitHubToken)
	opts := []report.Option{report.WithOutputDir(cfg.OutputDir)}
	if store != nil {
		opts = append(opts, report.WithStorage(store))
	}
	if showTable {
		opts = append(opts, report.WithVisualizer(report.NewTableVisualizer()))
	}
	return report.NewGenerator(registry, opts...)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	job, err := report.LoadJob(jobFile)
	if err != nil {
		return fmt.Errorf("failed to load job file: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		// Run history is a convenience; generation still works without it.
		fmt.Fprintf(os.Stderr, "Warning: storage unavailable, runs will not be recorded: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	gen := buildGenerator(cfg, store)

	fmt.Printf("Generating report %q\n", job.ReportName)
	results, err := gen.GenerateReports(context.Background(), job)
	if err != nil {
		return fmt.Errorf("report generation failed: %w", err)
	}

	for _, r := range results {
		fmt.Printf("Wrote %q to %s (%d periods)\n", r.Output.Name, r.Path, len(r.Output.Periods))
	}
	return nil
}

func runPeriods(cmd *cobra.Command, args []string) error {
	job, err := report.LoadJob(jobFile)
	if err != nil {
		return fmt.Errorf("failed to load job file: %w", err)
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	groupings := []domain.GroupingConfig(job.TimeGrouping)
	if len(args) == 1 {
		found := false
		for _, g := range groupings {
			if string(g.Type) == args[0] {
				groupings = []domain.GroupingConfig{g}
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("grouping %q is not configured in %s", args[0], jobFile)
		}
	}

	startDate, err := job.ParsedStartDate()
	if err != nil {
		return err
	}
	end := time.Now()
	if parsed, err := job.ParsedEndDate(); err != nil {
		return err
	} else if parsed != nil {
		end = *parsed
	}

	for _, grouping := range groupings {
		periods, err := aggregator.GeneratePeriods(grouping, startDate, end)
		if err != nil {
			return err
		}

		if outputJSON {
			data, err := json.MarshalIndent(periods, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			continue
		}

		fmt.Printf("\nGrouping: %s (%d periods)\n\n", grouping.Type, len(periods))
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Period", "Start", "End"})
		for _, p := range periods {
			table.Append([]string{
				p.Name,
				p.Start.Format("2006-01-02 15:04:05"),
				p.End.Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
	}
	return nil
}

func runListRuns(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), reportName, limitRuns)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if outputJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Report", "Grouping", "Range", "Generated", "Path"})
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.ReportName,
			r.Grouping,
			fmt.Sprintf("%s..%s", r.StartDate, r.EndDate),
			r.GeneratedAt.Format("2006-01-02 15:04:05"),
			r.Path,
		})
	}
	table.Render()
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	run, err := store.GetRun(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if outputJSON {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Run:       %s\n", run.ID)
	fmt.Printf("Report:    %s\n", run.ReportName)
	fmt.Printf("Grouping:  %s\n", run.Grouping)
	fmt.Printf("Range:     %s..%s\n", run.StartDate, run.EndDate)
	fmt.Printf("Generated: %s\n", run.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("Path:      %s\n\n", run.Path)
	fmt.Println(string(run.Document))
	return nil
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	job, err := report.LoadJob(jobFile)
	if err != nil {
		return fmt.Errorf("failed to load job file: %w", err)
	}

	registry := collector.NewRegistry(cfg.GitHubToken)
	built := registry.Configured(job.DataSources)

	ready := make(map[string]bool, len(built))
	for _, src := range built {
		ready[src.Name()] = true
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Source", "Type", "Metrics", "Status"})
	for _, sc := range job.DataSources {
		status := "skipped"
		if ready[sc.Name] {
			status = "ok"
		}
		table.Append([]string{sc.Name, sc.Type, fmt.Sprintf("%d", len(sc.Metrics)), status})
	}
	table.Render()

	fmt.Printf("\nBuilt %d of %d configured sources\n", len(built), len(job.DataSources))
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	gen := buildGenerator(cfg, store)
	sched := scheduler.New(gen)

	for _, path := range args {
		job, err := report.LoadJob(path)
		if err != nil {
			return fmt.Errorf("failed to load job file %s: %w", path, err)
		}
		if err := job.Validate(); err != nil {
			return fmt.Errorf("invalid job in %s: %w", path, err)
		}
		if err := sched.Add(job); err != nil {
			return err
		}
		fmt.Printf("Scheduled %q (%s)\n", job.ReportName, job.Schedule)
	}

	sched.Start()
	fmt.Println("Scheduler started, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Stopping scheduler...")
	sched.Stop()
	return nil
}
