package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	apperrors "github.com/IstiN/dmtools-sub007/internal/errors"
)

// JobConfig is one report job: what to collect, how to partition the span,
// and where the documents go. Jobs are loaded from YAML files or posted as
// JSON to the API.
type JobConfig struct {
	ReportName   string                `yaml:"reportName" json:"reportName"`
	StartDate    string                `yaml:"startDate" json:"startDate,omitempty"`
	EndDate      string                `yaml:"endDate" json:"endDate,omitempty"`
	DataSources  []domain.SourceConfig `yaml:"dataSources" json:"dataSources"`
	TimeGrouping GroupingList          `yaml:"timeGrouping" json:"timeGrouping"`
	Aggregation  AggregationConfig     `yaml:"aggregation" json:"aggregation,omitempty"`
	Output       domain.OutputConfig   `yaml:"output" json:"output"`
	Employees    []string              `yaml:"employees" json:"employees,omitempty"`
	Aliases      map[string]string     `yaml:"aliases" json:"aliases,omitempty"`

	// Schedule is an optional 5-field cron expression for recurring runs.
	Schedule string `yaml:"schedule" json:"schedule,omitempty"`
}

// AggregationConfig carries the score formula with ${label} placeholders.
type AggregationConfig struct {
	Formula string `yaml:"formula" json:"formula,omitempty"`
}

// GroupingList accepts either a single grouping object or an array of them,
// since most jobs configure exactly one grouping.
type GroupingList []domain.GroupingConfig

// UnmarshalYAML supports both the object and the array form.
func (g *GroupingList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var list []domain.GroupingConfig
		if err := value.Decode(&list); err != nil {
			return err
		}
		*g = list
		return nil
	}
	var single domain.GroupingConfig
	if err := value.Decode(&single); err != nil {
		return err
	}
	*g = GroupingList{single}
	return nil
}

// UnmarshalJSON supports both the object and the array form.
func (g *GroupingList) UnmarshalJSON(data []byte) error {
	var list []domain.GroupingConfig
	if err := json.Unmarshal(data, &list); err == nil {
		*g = list
		return nil
	}
	var single domain.GroupingConfig
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*g = GroupingList{single}
	return nil
}

// LoadJob reads and validates a job configuration from a YAML file.
func LoadJob(path string) (*JobConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job config %s: %w", path, err)
	}
	var job JobConfig
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, apperrors.NewInvalidConfigError(fmt.Sprintf("failed to parse %s: %v", path, err))
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate checks the parts of a job that must be right before any I/O
// happens. Grouping-specific date requirements are enforced again by the
// period generator.
func (j *JobConfig) Validate() error {
	if j.ReportName == "" {
		return apperrors.NewInvalidConfigError("reportName is required")
	}
	if len(j.DataSources) == 0 {
		return apperrors.NewInvalidConfigError("at least one data source is required")
	}
	for _, sc := range j.DataSources {
		if sc.Name == "" {
			return apperrors.NewInvalidConfigError("every data source needs a name")
		}
		if len(sc.Metrics) == 0 {
			return apperrors.NewInvalidConfigError(
				fmt.Sprintf("data source %q configures no metrics", sc.Name))
		}
		for _, mc := range sc.Metrics {
			if mc.Name == "" {
				return apperrors.NewInvalidConfigError(
					fmt.Sprintf("data source %q: every metric needs a name", sc.Name))
			}
		}
	}
	if len(j.TimeGrouping) == 0 {
		return apperrors.NewInvalidConfigError("timeGrouping is required")
	}
	for _, g := range j.TimeGrouping {
		if g.Type == domain.GroupingStatic && len(g.Periods) == 0 {
			return apperrors.NewInvalidConfigError("static grouping configures no periods")
		}
		if g.Type != domain.GroupingStatic && j.StartDate == "" {
			return apperrors.NewInvalidConfigError(
				fmt.Sprintf("startDate is required for %q grouping", g.Type))
		}
	}
	if _, err := j.ParsedStartDate(); err != nil {
		return err
	}
	if _, err := j.ParsedEndDate(); err != nil {
		return err
	}
	return nil
}

// ParsedStartDate returns the job start date, or nil when absent.
func (j *JobConfig) ParsedStartDate() (*time.Time, error) {
	if j.StartDate == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateFormat, j.StartDate)
	if err != nil {
		return nil, apperrors.NewInvalidConfigError(fmt.Sprintf("bad startDate %q", j.StartDate))
	}
	return &t, nil
}

// ParsedEndDate returns the job end date, or nil when it should default to today.
func (j *JobConfig) ParsedEndDate() (*time.Time, error) {
	if j.EndDate == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateFormat, j.EndDate)
	if err != nil {
		return nil, apperrors.NewInvalidConfigError(fmt.Sprintf("bad endDate %q", j.EndDate))
	}
	return &t, nil
}
