package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	apperrors "github.com/IstiN/dmtools-sub007/internal/errors"
)

const validJobYAML = `
reportName: Team Productivity
startDate: 2024-01-01
endDate: 2024-03-31
dataSources:
  - name: tracker
    type: file
    params:
      path: ./items.json
    metrics:
      - name: commits
      - name: points
        rule: field-weight
        weightField: storyPoints
        isWeight: true
        divider: 2
timeGrouping:
  type: weekly
aggregation:
  formula: "${commits} + ${points}"
output:
  outputPath: ./out
  saveRawMetadata: true
employees:
  - Alice Smith
aliases:
  asmith: Alice Smith
`

func writeJobFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJob(t *testing.T) {
	job, err := LoadJob(writeJobFile(t, validJobYAML))
	require.NoError(t, err)

	assert.Equal(t, "Team Productivity", job.ReportName)
	require.Len(t, job.DataSources, 1)
	require.Len(t, job.DataSources[0].Metrics, 2)
	assert.Equal(t, 2.0, job.DataSources[0].Metrics[1].Divider)
	assert.True(t, job.DataSources[0].Metrics[1].IsWeight)
	require.Len(t, job.TimeGrouping, 1)
	assert.Equal(t, domain.GroupingWeekly, job.TimeGrouping[0].Type)
	assert.Equal(t, "${commits} + ${points}", job.Aggregation.Formula)
	assert.True(t, job.Output.SaveRawMetadata)
	assert.Equal(t, map[string]string{"asmith": "Alice Smith"}, job.Aliases)
}

func TestGroupingListYAMLForms(t *testing.T) {
	single, err := LoadJob(writeJobFile(t, `
reportName: r
startDate: 2024-01-01
dataSources:
  - name: s
    type: file
    params: {path: ./x.json}
    metrics: [{name: m}]
timeGrouping:
  type: daily
output: {outputPath: ./out}
`))
	require.NoError(t, err)
	require.Len(t, single.TimeGrouping, 1)

	list, err := LoadJob(writeJobFile(t, `
reportName: r
startDate: 2024-01-01
dataSources:
  - name: s
    type: file
    params: {path: ./x.json}
    metrics: [{name: m}]
timeGrouping:
  - type: daily
  - type: monthly
output: {outputPath: ./out}
`))
	require.NoError(t, err)
	require.Len(t, list.TimeGrouping, 2)
	assert.Equal(t, domain.GroupingDaily, list.TimeGrouping[0].Type)
	assert.Equal(t, domain.GroupingMonthly, list.TimeGrouping[1].Type)
}

func TestGroupingListJSONForms(t *testing.T) {
	var job JobConfig
	require.NoError(t, json.Unmarshal([]byte(`{
		"reportName": "r",
		"timeGrouping": {"type": "weekly"}
	}`), &job))
	require.Len(t, job.TimeGrouping, 1)
	assert.Equal(t, domain.GroupingWeekly, job.TimeGrouping[0].Type)

	var job2 JobConfig
	require.NoError(t, json.Unmarshal([]byte(`{
		"reportName": "r",
		"timeGrouping": [{"type": "weekly"}, {"type": "yearly"}]
	}`), &job2))
	require.Len(t, job2.TimeGrouping, 2)
}

func TestJobConfigValidate(t *testing.T) {
	base := func() *JobConfig {
		return &JobConfig{
			ReportName: "r",
			StartDate:  "2024-01-01",
			DataSources: []domain.SourceConfig{{
				Name: "s", Type: "file",
				Metrics: []domain.MetricConfig{{Name: "m"}},
			}},
			TimeGrouping: GroupingList{{Type: domain.GroupingDaily}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*JobConfig)
		errMsg string
	}{
		{"valid", func(j *JobConfig) {}, ""},
		{"missing report name", func(j *JobConfig) { j.ReportName = "" }, "reportName"},
		{"no data sources", func(j *JobConfig) { j.DataSources = nil }, "data source"},
		{"source without name", func(j *JobConfig) { j.DataSources[0].Name = "" }, "name"},
		{"source without metrics", func(j *JobConfig) { j.DataSources[0].Metrics = nil }, "metrics"},
		{"metric without name", func(j *JobConfig) { j.DataSources[0].Metrics[0].Name = "" }, "metric"},
		{"no grouping", func(j *JobConfig) { j.TimeGrouping = nil }, "timeGrouping"},
		{"static without periods", func(j *JobConfig) {
			j.TimeGrouping = GroupingList{{Type: domain.GroupingStatic}}
		}, "static"},
		{"non-static without start date", func(j *JobConfig) { j.StartDate = "" }, "startDate"},
		{"bad start date", func(j *JobConfig) { j.StartDate = "Jan 1" }, "startDate"},
		{"bad end date", func(j *JobConfig) { j.EndDate = "soon" }, "endDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := base()
			tt.mutate(job)
			err := job.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidConfig(err))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestJobConfigStaticOnlyNeedsNoStartDate(t *testing.T) {
	job := &JobConfig{
		ReportName: "r",
		DataSources: []domain.SourceConfig{{
			Name: "s", Type: "file",
			Metrics: []domain.MetricConfig{{Name: "m"}},
		}},
		TimeGrouping: GroupingList{{
			Type:    domain.GroupingStatic,
			Periods: []domain.StaticPeriod{{Name: "p", Start: "2024-01-01", End: "2024-01-31"}},
		}},
	}
	require.NoError(t, job.Validate())
}
