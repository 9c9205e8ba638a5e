package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricConfigNormalized(t *testing.T) {
	tests := []struct {
		name        string
		cfg         MetricConfig
		wantLabel   string
		wantDivider float64
	}{
		{
			name:        "defaults applied",
			cfg:         MetricConfig{Name: "commits"},
			wantLabel:   "commits",
			wantDivider: 1.0,
		},
		{
			name:        "explicit values kept",
			cfg:         MetricConfig{Name: "commits", Label: "Commit Count", Divider: 2.5},
			wantLabel:   "Commit Count",
			wantDivider: 2.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.Normalized()
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, tt.wantDivider, got.Divider)
		})
	}
}

func TestMetricSummaryFold(t *testing.T) {
	now := time.Now()
	s := NewMetricSummary()
	s.Fold([]Event{
		{Who: "alice", When: now, Weight: 2.0},
		{Who: "bob", When: now, Weight: 4.0},
		{Who: "alice", When: now, Weight: 6.0},
	}, 2.0)

	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 6.0, s.TotalWeight, 1e-9)
	assert.Equal(t, []string{"alice", "bob"}, s.Contributors)
}

func TestContributorMetricsFoldEvent(t *testing.T) {
	now := time.Now()
	cm := NewContributorMetrics()
	cm.FoldEvent("commits", Event{Who: "alice", When: now, Weight: 1.0}, 1.0)
	cm.FoldEvent("commits", Event{Who: "alice", When: now, Weight: 1.0}, 1.0)
	cm.FoldEvent("points", Event{Who: "alice", When: now, Weight: 5.0}, 1.0)

	assert.Equal(t, 2, cm.Metrics["commits"].Count)
	assert.InDelta(t, 2.0, cm.Metrics["commits"].TotalWeight, 1e-9)
	assert.InDelta(t, 5.0, cm.Metrics["points"].TotalWeight, 1e-9)
}
