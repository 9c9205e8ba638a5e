package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IstiN/dmtools-sub007/internal/domain"
)

func TestAggregateAcrossPeriods(t *testing.T) {
	data := collected("tracker", "commits",
		domain.Event{ItemKey: "A", Who: "alice", When: date(2024, 1, 10), Weight: 1},
		domain.Event{ItemKey: "B", Who: "bob", When: date(2024, 2, 10), Weight: 1},
		domain.Event{ItemKey: "C", Who: "alice", When: date(2024, 2, 20), Weight: 1},
	)

	out := domain.OutputConfig{SaveRawMetadata: true}
	periods := []*domain.PeriodResult{
		BuildPeriodResult(period("January", date(2024, 1, 1), date(2024, 1, 31)), data, out, "", nil),
		BuildPeriodResult(period("February", date(2024, 2, 1), date(2024, 2, 29)), data, out, "", nil),
	}

	agg := AggregateAcrossPeriods(periods, data, "", nil)

	require.NotNil(t, agg.Total.Metrics["commits"])
	assert.Equal(t, 3, agg.Total.Metrics["commits"].Count)
	assert.ElementsMatch(t, []string{"alice", "bob"}, agg.Total.Metrics["commits"].Contributors)

	require.Contains(t, agg.ByContributor, "alice")
	require.Contains(t, agg.ByContributor, "bob")
	assert.Equal(t, 2, agg.ByContributor["alice"].Metrics["commits"].Count)
	assert.Equal(t, 1, agg.ByContributor["bob"].Metrics["commits"].Count)
}

func TestAggregateAcrossPeriodsRawMetadataGating(t *testing.T) {
	data := collected("tracker", "commits",
		domain.Event{ItemKey: "A", Who: "alice", When: date(2024, 1, 10), Weight: 1},
	)

	// With raw metadata disabled the periods retain no dataset items, so the
	// cross-period aggregates come out empty as well.
	out := domain.OutputConfig{SaveRawMetadata: false}
	periods := []*domain.PeriodResult{
		BuildPeriodResult(period("January", date(2024, 1, 1), date(2024, 1, 31)), data, out, "", nil),
	}

	agg := AggregateAcrossPeriods(periods, data, "", nil)
	assert.Empty(t, agg.Total.Metrics)
	assert.Empty(t, agg.ByContributor)
}

func TestAggregateAcrossPeriodsEmployeesFilter(t *testing.T) {
	data := collected("tracker", "commits",
		domain.Event{ItemKey: "A", Who: "alice", When: date(2024, 1, 10), Weight: 1},
		domain.Event{ItemKey: "B", Who: "mallory", When: date(2024, 1, 11), Weight: 1},
	)

	out := domain.OutputConfig{SaveRawMetadata: true}
	periods := []*domain.PeriodResult{
		BuildPeriodResult(period("January", date(2024, 1, 1), date(2024, 1, 31)), data, out, "", nil),
	}

	agg := AggregateAcrossPeriods(periods, data, "", []string{"alice"})

	// The run total still counts everyone; only the breakdown is filtered.
	assert.Equal(t, 2, agg.Total.Metrics["commits"].Count)
	assert.Contains(t, agg.ByContributor, "alice")
	assert.NotContains(t, agg.ByContributor, "mallory")
}
