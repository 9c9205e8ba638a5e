package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	apperrors "github.com/IstiN/dmtools-sub007/internal/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// requireContiguous asserts the periods are ordered, non-overlapping and
// leave no gap: each period starts exactly 1ms after the previous one ends.
func requireContiguous(t *testing.T, periods []domain.TimePeriod) {
	t.Helper()
	for i := 1; i < len(periods); i++ {
		prev, cur := periods[i-1], periods[i]
		require.Equal(t, prev.End.Add(time.Millisecond), cur.Start,
			"gap or overlap between %q and %q", prev.Name, cur.Name)
	}
}

func TestGeneratePeriodsDaily(t *testing.T) {
	start := date(2024, 1, 1)
	periods, err := GeneratePeriods(domain.GroupingConfig{Type: domain.GroupingDaily}, &start, date(2024, 1, 10))
	require.NoError(t, err)

	require.Len(t, periods, 10)
	assert.Equal(t, "2024-01-01", periods[0].Name)
	assert.Equal(t, "2024-01-10", periods[9].Name)
	requireContiguous(t, periods)

	first := periods[0]
	assert.Equal(t, date(2024, 1, 1), first.Start)
	assert.Equal(t, domain.EndOfDay(date(2024, 1, 1)), first.End)
}

func TestGeneratePeriodsWeekly(t *testing.T) {
	start := date(2024, 1, 1)
	periods, err := GeneratePeriods(domain.GroupingConfig{Type: domain.GroupingWeekly}, &start, date(2024, 1, 31))
	require.NoError(t, err)

	// Jan 1..31 is four full 7-day windows plus a clamped 3-day tail.
	require.Len(t, periods, 5)
	assert.Equal(t, "Week 1 (2024-01-01)", periods[0].Name)
	assert.Equal(t, "Week 5 (2024-01-29)", periods[4].Name)
	requireContiguous(t, periods)

	assert.Equal(t, domain.EndOfDay(date(2024, 1, 7)), periods[0].End)
	assert.Equal(t, domain.EndOfDay(date(2024, 1, 31)), periods[4].End)
}

func TestGeneratePeriodsBiWeekly(t *testing.T) {
	start := date(2024, 1, 1)
	periods, err := GeneratePeriods(domain.GroupingConfig{Type: domain.GroupingBiWeekly}, &start, date(2024, 2, 11))
	require.NoError(t, err)

	require.Len(t, periods, 3)
	assert.Equal(t, "Sprint 1 (2024-01-01)", periods[0].Name)
	assert.Equal(t, domain.EndOfDay(date(2024, 1, 14)), periods[0].End)
	requireContiguous(t, periods)
}

func TestGeneratePeriodsMonthly(t *testing.T) {
	start := date(2024, 1, 15)
	periods, err := GeneratePeriods(domain.GroupingConfig{Type: domain.GroupingMonthly}, &start, date(2024, 4, 10))
	require.NoError(t, err)

	require.Len(t, periods, 4)
	assert.Equal(t, "January 2024", periods[0].Name)
	assert.Equal(t, "April 2024", periods[3].Name)
	requireContiguous(t, periods)

	// The first month starts on the shifted start date, later months on the 1st.
	assert.Equal(t, date(2024, 1, 15), periods[0].Start)
	assert.Equal(t, domain.EndOfDay(date(2024, 1, 31)), periods[0].End)
	assert.Equal(t, date(2024, 2, 1), periods[1].Start)
	// 2024 is a leap year.
	assert.Equal(t, domain.EndOfDay(date(2024, 2, 29)), periods[1].End)
	// Last month clamped to the overall end.
	assert.Equal(t, domain.EndOfDay(date(2024, 4, 10)), periods[3].End)
}

func TestGeneratePeriodsQuarterly(t *testing.T) {
	start := date(2024, 2, 10)
	periods, err := GeneratePeriods(domain.GroupingConfig{Type: domain.GroupingQuarterly}, &start, date(2024, 8, 1))
	require.NoError(t, err)

	require.Len(t, periods, 3)
	assert.Equal(t, "Q1 2024", periods[0].Name)
	assert.Equal(t, "Q2 2024", periods[1].Name)
	assert.Equal(t, "Q3 2024", periods[2].Name)
	requireContiguous(t, periods)

	assert.Equal(t, date(2024, 2, 10), periods[0].Start)
	assert.Equal(t, domain.EndOfDay(date(2024, 3, 31)), periods[0].End)
	assert.Equal(t, date(2024, 4, 1), periods[1].Start)
	assert.Equal(t, domain.EndOfDay(date(2024, 8, 1)), periods[2].End)
}

func TestGeneratePeriodsYearly(t *testing.T) {
	start := date(2023, 6, 1)
	periods, err := GeneratePeriods(domain.GroupingConfig{Type: domain.GroupingYearly}, &start, date(2024, 3, 1))
	require.NoError(t, err)

	require.Len(t, periods, 2)
	assert.Equal(t, "2023", periods[0].Name)
	assert.Equal(t, "2024", periods[1].Name)
	requireContiguous(t, periods)
	assert.Equal(t, domain.EndOfDay(date(2024, 3, 1)), periods[1].End)
}

func TestGeneratePeriodsDayShift(t *testing.T) {
	start := date(2024, 1, 10)
	periods, err := GeneratePeriods(domain.GroupingConfig{Type: domain.GroupingDaily, DayShift: -2}, &start, date(2024, 1, 12))
	require.NoError(t, err)

	require.Len(t, periods, 5)
	assert.Equal(t, "2024-01-08", periods[0].Name)
}

func TestGeneratePeriodsStatic(t *testing.T) {
	cfg := domain.GroupingConfig{
		Type: domain.GroupingStatic,
		Periods: []domain.StaticPeriod{
			{Name: "Release 1.0", Start: "2024-01-01", End: "2024-02-15"},
			{Name: "Release 1.1", Start: "2024-02-16", End: "2024-03-31"},
		},
	}

	// Static periods ignore the job dates entirely, startDate may be nil.
	periods, err := GeneratePeriods(cfg, nil, date(2024, 1, 1))
	require.NoError(t, err)

	require.Len(t, periods, 2)
	assert.Equal(t, "Release 1.0", periods[0].Name)
	assert.Equal(t, date(2024, 1, 1), periods[0].Start)
	assert.Equal(t, domain.EndOfDay(date(2024, 2, 15)), periods[0].End)
}

func TestGeneratePeriodsStaticBadDate(t *testing.T) {
	cfg := domain.GroupingConfig{
		Type:    domain.GroupingStatic,
		Periods: []domain.StaticPeriod{{Name: "bad", Start: "01/01/2024", End: "2024-02-15"}},
	}
	_, err := GeneratePeriods(cfg, nil, date(2024, 1, 1))
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidConfig(err))
}

func TestGeneratePeriodsMissingStartDate(t *testing.T) {
	_, err := GeneratePeriods(domain.GroupingConfig{Type: domain.GroupingDaily}, nil, date(2024, 1, 1))
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidConfig(err))
}

func TestGeneratePeriodsUnknownGrouping(t *testing.T) {
	start := date(2024, 1, 1)
	_, err := GeneratePeriods(domain.GroupingConfig{Type: "fortnightly"}, &start, date(2024, 1, 2))
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidConfig(err))
}
