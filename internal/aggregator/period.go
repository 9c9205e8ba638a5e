package aggregator

import (
	"sort"

	"github.com/IstiN/dmtools-sub007/internal/collector"
	"github.com/IstiN/dmtools-sub007/internal/domain"
)

// BuildPeriodResult filters the collected events down to one period and rolls
// them into per-metric summaries and a per-contributor breakdown.
//
// Dataset items are retained only when the output config enables raw metadata;
// the contributor breakdown is derived from the retained dataset items, so it
// stays empty when raw metadata is off.
func BuildPeriodResult(period domain.TimePeriod, data *collector.Collected, out domain.OutputConfig, formula string, employees []string) *domain.PeriodResult {
	result := &domain.PeriodResult{
		Name:                 period.Name,
		Start:                period.Start.Format(domain.DateFormat),
		End:                  period.End.Format(domain.DateFormat),
		Metrics:              make(map[string]*domain.MetricSummary),
		Dataset:              []domain.DatasetItem{},
		ContributorBreakdown: make(map[string]*domain.ContributorMetrics),
	}

	// Source, label and item keys are walked in sorted order so repeated runs
	// over the same data produce identical documents.
	for _, sourceName := range data.SourceNames() {
		byLabel := data.BySource[sourceName]
		for _, label := range sortedKeys(byLabel) {
			sr := byLabel[label]
			divider := data.DividerFor(label)
			for _, itemKey := range sortedKeys(sr.EventsByItem) {
				filtered := filterEvents(sr.EventsByItem[itemKey], period)
				if len(filtered) == 0 {
					continue
				}

				if out.SaveRawMetadata {
					result.Dataset = append(result.Dataset, domain.DatasetItem{
						Source:   sourceName,
						Metadata: sr.MetadataByItem[itemKey],
						Metrics:  map[string][]domain.Event{label: filtered},
					})
				}

				sum := result.Metrics[label]
				if sum == nil {
					sum = domain.NewMetricSummary()
					result.Metrics[label] = sum
				}
				sum.Fold(filtered, divider)
			}
		}
	}

	result.Score = scoreOrZero(formula, result.Metrics)
	foldContributors(result.ContributorBreakdown, result.Dataset, data, employees)
	for _, cm := range result.ContributorBreakdown {
		cm.Score = scoreOrZero(formula, cm.Metrics)
	}

	return result
}

func filterEvents(events []domain.Event, period domain.TimePeriod) []domain.Event {
	var filtered []domain.Event
	for _, ev := range events {
		if period.Contains(ev.When) {
			filtered = append(filtered, ev)
		}
	}
	return filtered
}

// foldContributors buckets dataset events by contributor. When an employee
// list is configured, contributors outside it are left out of the breakdown.
func foldContributors(into map[string]*domain.ContributorMetrics, dataset []domain.DatasetItem, data *collector.Collected, employees []string) {
	for _, di := range dataset {
		for label, events := range di.Metrics {
			divider := data.DividerFor(label)
			for _, ev := range events {
				if !contributorAllowed(ev.Who, employees) {
					continue
				}
				cm := into[ev.Who]
				if cm == nil {
					cm = domain.NewContributorMetrics()
					into[ev.Who] = cm
				}
				cm.FoldEvent(label, ev, divider)
			}
		}
	}
}

func contributorAllowed(who string, employees []string) bool {
	if len(employees) == 0 {
		return true
	}
	for _, e := range employees {
		if e == who {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
