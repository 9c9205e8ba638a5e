package domain

import (
	"encoding/json"
	"time"
)

// DateFormat is the civil date form used in job configs and report documents.
const DateFormat = "2006-01-02"

// SourceConfig configures one data source adapter and the metrics collected
// from it.
type SourceConfig struct {
	Name    string            `yaml:"name" json:"name"`
	Type    string            `yaml:"type" json:"type"`
	Params  map[string]string `yaml:"params" json:"params,omitempty"`
	Metrics []MetricConfig    `yaml:"metrics" json:"metrics"`
}

// OutputConfig controls where and how report documents are written.
type OutputConfig struct {
	OutputPath      string `yaml:"outputPath" json:"outputPath"`
	SaveRawMetadata bool   `yaml:"saveRawMetadata" json:"saveRawMetadata"`
	Visualizer      string `yaml:"visualizer" json:"visualizer,omitempty"`
}

// DatasetItem is an optionally retained raw record: the contributing source,
// the item's raw metadata and the period-filtered events per metric label.
// Cross-period and contributor aggregation read these back.
type DatasetItem struct {
	Source   string             `json:"source"`
	Metadata json.RawMessage    `json:"metadata,omitempty"`
	Metrics  map[string][]Event `json:"metrics"`
}

// PeriodResult is the aggregation outcome for one time period.
type PeriodResult struct {
	Name                 string                         `json:"name"`
	Start                string                         `json:"start"`
	End                  string                         `json:"end"`
	Metrics              map[string]*MetricSummary      `json:"metrics"`
	Score                float64                        `json:"score"`
	Dataset              []DatasetItem                  `json:"dataset"`
	ContributorBreakdown map[string]*ContributorMetrics `json:"contributorBreakdown"`
}

// AggregatedResult combines all periods into per-contributor totals and a
// single run total.
type AggregatedResult struct {
	ByContributor map[string]*ContributorMetrics `json:"byContributor"`
	Total         *ContributorMetrics            `json:"total"`
}

// ReportOutput is the assembled report document, one per grouping.
type ReportOutput struct {
	Name          string            `json:"name"`
	GeneratedAt   time.Time         `json:"generatedAt"`
	StartDate     string            `json:"startDate"`
	EndDate       string            `json:"endDate"`
	Periods       []*PeriodResult   `json:"periods"`
	Aggregated    *AggregatedResult `json:"aggregated"`
	WeightMetrics []string          `json:"weightMetrics,omitempty"`
}

// ReportRun records one produced report document for history and retrieval.
type ReportRun struct {
	ID          string          `json:"id"`
	ReportName  string          `json:"reportName"`
	Grouping    string          `json:"grouping"`
	Path        string          `json:"path"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Document    json.RawMessage `json:"document,omitempty"`
}
