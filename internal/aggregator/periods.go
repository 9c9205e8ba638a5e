package aggregator

import (
	"fmt"
	"strconv"
	"time"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	apperrors "github.com/IstiN/dmtools-sub007/internal/errors"
)

// GeneratePeriods produces the ordered, contiguous, non-overlapping period
// list for one grouping. startDate may be nil only for the static grouping;
// endDate must already be resolved (a missing job end date defaults to today
// upstream, once for all groupings). Every period start carries 00:00:00.000
// and every period end 23:59:59.999, with the final period clamped to the
// overall end.
func GeneratePeriods(cfg domain.GroupingConfig, startDate *time.Time, endDate time.Time) ([]domain.TimePeriod, error) {
	if cfg.Type == domain.GroupingStatic {
		return staticPeriods(cfg.Periods)
	}
	if startDate == nil {
		return nil, apperrors.NewInvalidConfigError(
			fmt.Sprintf("startDate is required for %q grouping", cfg.Type))
	}

	start := domain.StartOfDay(startDate.AddDate(0, 0, cfg.DayShift))
	end := domain.EndOfDay(endDate)

	switch cfg.Type {
	case domain.GroupingDaily:
		return dailyPeriods(start, end), nil
	case domain.GroupingWeekly:
		return windowPeriods(start, end, 7, "Week"), nil
	case domain.GroupingBiWeekly:
		return windowPeriods(start, end, 14, "Sprint"), nil
	case domain.GroupingMonthly:
		return monthlyPeriods(start, end), nil
	case domain.GroupingQuarterly:
		return quarterlyPeriods(start, end), nil
	case domain.GroupingYearly:
		return yearlyPeriods(start, end), nil
	default:
		return nil, apperrors.NewInvalidConfigError(
			fmt.Sprintf("unknown grouping type %q", cfg.Type))
	}
}

func staticPeriods(configured []domain.StaticPeriod) ([]domain.TimePeriod, error) {
	periods := make([]domain.TimePeriod, 0, len(configured))
	for _, sp := range configured {
		start, err := time.Parse(domain.DateFormat, sp.Start)
		if err != nil {
			return nil, apperrors.NewInvalidConfigError(
				fmt.Sprintf("static period %q: bad start date %q", sp.Name, sp.Start))
		}
		end, err := time.Parse(domain.DateFormat, sp.End)
		if err != nil {
			return nil, apperrors.NewInvalidConfigError(
				fmt.Sprintf("static period %q: bad end date %q", sp.Name, sp.End))
		}
		periods = append(periods, domain.TimePeriod{
			Name:  sp.Name,
			Start: domain.StartOfDay(start),
			End:   domain.EndOfDay(end),
		})
	}
	return periods, nil
}

func dailyPeriods(start, end time.Time) []domain.TimePeriod {
	var periods []domain.TimePeriod
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		periods = append(periods, domain.TimePeriod{
			Name:  day.Format(domain.DateFormat),
			Start: day,
			End:   clamp(domain.EndOfDay(day), end),
		})
	}
	return periods
}

// windowPeriods builds fixed-length offset windows from the start date, with
// no calendar-week alignment. The last window is clamped to the overall end.
func windowPeriods(start, end time.Time, days int, label string) []domain.TimePeriod {
	var periods []domain.TimePeriod
	counter := 1
	for s := start; !s.After(end); s = s.AddDate(0, 0, days) {
		periods = append(periods, domain.TimePeriod{
			Name:  fmt.Sprintf("%s %d (%s)", label, counter, s.Format(domain.DateFormat)),
			Start: s,
			End:   clamp(domain.EndOfDay(s.AddDate(0, 0, days-1)), end),
		})
		counter++
	}
	return periods
}

func monthlyPeriods(start, end time.Time) []domain.TimePeriod {
	var periods []domain.TimePeriod
	s := start
	for !s.After(end) {
		// Day 0 of the next month is the last day of this one.
		lastDay := time.Date(s.Year(), s.Month()+1, 0, 0, 0, 0, 0, s.Location())
		periods = append(periods, domain.TimePeriod{
			Name:  s.Format("January 2006"),
			Start: s,
			End:   clamp(domain.EndOfDay(lastDay), end),
		})
		s = time.Date(s.Year(), s.Month()+1, 1, 0, 0, 0, 0, s.Location())
	}
	return periods
}

func quarterlyPeriods(start, end time.Time) []domain.TimePeriod {
	var periods []domain.TimePeriod
	s := start
	for !s.After(end) {
		quarter := (int(s.Month())-1)/3 + 1
		lastMonth := time.Month(quarter * 3)
		lastDay := time.Date(s.Year(), lastMonth+1, 0, 0, 0, 0, 0, s.Location())
		periods = append(periods, domain.TimePeriod{
			Name:  fmt.Sprintf("Q%d %d", quarter, s.Year()),
			Start: s,
			End:   clamp(domain.EndOfDay(lastDay), end),
		})
		s = time.Date(s.Year(), lastMonth+1, 1, 0, 0, 0, 0, s.Location())
	}
	return periods
}

func yearlyPeriods(start, end time.Time) []domain.TimePeriod {
	var periods []domain.TimePeriod
	s := start
	for !s.After(end) {
		lastDay := time.Date(s.Year(), time.December, 31, 0, 0, 0, 0, s.Location())
		periods = append(periods, domain.TimePeriod{
			Name:  strconv.Itoa(s.Year()),
			Start: s,
			End:   clamp(domain.EndOfDay(lastDay), end),
		})
		s = time.Date(s.Year()+1, time.January, 1, 0, 0, 0, 0, s.Location())
	}
	return periods
}

func clamp(t, max time.Time) time.Time {
	if t.After(max) {
		return max
	}
	return t
}
