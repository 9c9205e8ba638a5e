package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/IstiN/dmtools-sub007/internal/report"
)

// Scheduler runs report jobs on their cron schedules. A failing run is logged
// and retried at the next tick; it never stops the scheduler.
type Scheduler struct {
	cron      *cron.Cron
	generator *report.Generator
}

// New creates a scheduler over a report generator.
func New(generator *report.Generator) *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Scheduler{
		cron:      cron.New(cron.WithParser(parser)),
		generator: generator,
	}
}

// Add registers a job under its 5-field cron expression
// (minute hour day-of-month month day-of-week).
func (s *Scheduler) Add(job *report.JobConfig) error {
	if job.Schedule == "" {
		return fmt.Errorf("job %q has no schedule", job.ReportName)
	}
	_, err := s.cron.AddFunc(job.Schedule, func() {
		log.Printf("Running scheduled report %q", job.ReportName)
		results, err := s.generator.GenerateReports(context.Background(), job)
		if err != nil {
			log.Printf("Scheduled report %q failed: %v", job.ReportName, err)
			return
		}
		for _, r := range results {
			log.Printf("Report %q written to %s", r.Output.Name, r.Path)
		}
	})
	if err != nil {
		return fmt.Errorf("bad schedule %q for job %q: %w", job.Schedule, job.ReportName, err)
	}
	return nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
