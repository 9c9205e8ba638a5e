package aggregator

import (
	"github.com/IstiN/dmtools-sub007/internal/collector"
	"github.com/IstiN/dmtools-sub007/internal/domain"
)

// AggregateAcrossPeriods combines every period's dataset items into a single
// run total and a per-contributor total spanning the whole report.
//
// Only retained dataset items are visible here: with raw metadata disabled the
// aggregates come out empty. That coupling is kept on purpose (see DESIGN.md).
// A formula failure never aborts the report; the affected entity scores 0.0.
func AggregateAcrossPeriods(periods []*domain.PeriodResult, data *collector.Collected, formula string, employees []string) *domain.AggregatedResult {
	agg := &domain.AggregatedResult{
		ByContributor: make(map[string]*domain.ContributorMetrics),
		Total:         domain.NewContributorMetrics(),
	}

	for _, pr := range periods {
		for _, di := range pr.Dataset {
			for label, events := range di.Metrics {
				divider := data.DividerFor(label)
				for _, ev := range events {
					agg.Total.FoldEvent(label, ev, divider)
					if !contributorAllowed(ev.Who, employees) {
						continue
					}
					cm := agg.ByContributor[ev.Who]
					if cm == nil {
						cm = domain.NewContributorMetrics()
						agg.ByContributor[ev.Who] = cm
					}
					cm.FoldEvent(label, ev, divider)
				}
			}
		}
	}

	agg.Total.Score = scoreOrZero(formula, agg.Total.Metrics)
	for _, cm := range agg.ByContributor {
		cm.Score = scoreOrZero(formula, cm.Metrics)
	}

	return agg
}
