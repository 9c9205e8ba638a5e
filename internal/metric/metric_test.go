package metric

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	apperrors "github.com/IstiN/dmtools-sub007/internal/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.MetricConfig
		wantErr bool
	}{
		{"empty rule defaults to activity", domain.MetricConfig{Name: "commits"}, false},
		{"explicit activity", domain.MetricConfig{Name: "commits", Rule: RuleActivity}, false},
		{"field-weight with field", domain.MetricConfig{Name: "points", Rule: RuleFieldWeight, WeightField: "storyPoints"}, false},
		{"field-weight without field", domain.MetricConfig{Name: "points", Rule: RuleFieldWeight}, true},
		{"unknown rule", domain.MetricConfig{Name: "x", Rule: "bogus"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsInvalidConfig(err))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rule)
		})
	}
}

func TestActivityRule(t *testing.T) {
	rule, err := New(domain.MetricConfig{Name: "commits"})
	require.NoError(t, err)

	when := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	events, ok := rule.Apply(domain.Item{Key: "PROJ-1", Actor: "alice", Timestamp: when})
	require.True(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, "PROJ-1", events[0].ItemKey)
	assert.Equal(t, "alice", events[0].Who)
	assert.Equal(t, when, events[0].When)
	assert.Equal(t, 1.0, events[0].Weight)
}

func TestActivityRuleUnknownActor(t *testing.T) {
	rule, err := New(domain.MetricConfig{Name: "commits"})
	require.NoError(t, err)

	events, ok := rule.Apply(domain.Item{Key: "PROJ-1", Timestamp: time.Now()})
	require.True(t, ok)
	assert.Equal(t, domain.UnknownContributor, events[0].Who)
}

func TestActivityRuleZeroTimestamp(t *testing.T) {
	rule, err := New(domain.MetricConfig{Name: "commits"})
	require.NoError(t, err)

	_, ok := rule.Apply(domain.Item{Key: "PROJ-1", Actor: "alice"})
	assert.False(t, ok)
}

func TestFieldWeightRule(t *testing.T) {
	rule, err := New(domain.MetricConfig{Name: "points", Rule: RuleFieldWeight, WeightField: "storyPoints"})
	require.NoError(t, err)

	when := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	events, ok := rule.Apply(domain.Item{
		Key: "PROJ-2", Actor: "bob", Timestamp: when,
		Numbers: map[string]float64{"storyPoints": 8},
	})
	require.True(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, 8.0, events[0].Weight)
}

func TestFieldWeightRuleMissingField(t *testing.T) {
	rule, err := New(domain.MetricConfig{Name: "points", Rule: RuleFieldWeight, WeightField: "storyPoints"})
	require.NoError(t, err)

	_, ok := rule.Apply(domain.Item{Key: "PROJ-3", Actor: "bob", Timestamp: time.Now()})
	assert.False(t, ok)
}
