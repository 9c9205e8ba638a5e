package domain

// MetricConfig is a named, pluggable rule configuration: which rule derives
// events from raw items, and the weight semantics applied to its label.
type MetricConfig struct {
	Name     string  `yaml:"name" json:"name"`
	Label    string  `yaml:"label" json:"label,omitempty"`
	IsWeight bool    `yaml:"isWeight" json:"isWeight,omitempty"`
	Divider  float64 `yaml:"divider" json:"divider,omitempty"`
	Rule     string  `yaml:"rule" json:"rule,omitempty"`

	// Field mappings consumed by the rules. Zero values fall back to the
	// adapter defaults.
	WeightField string `yaml:"weightField" json:"weightField,omitempty"`
}

// Normalized returns a copy with defaults applied: the label defaults to the
// metric name and the divider to 1.0.
func (c MetricConfig) Normalized() MetricConfig {
	if c.Label == "" {
		c.Label = c.Name
	}
	if c.Divider == 0 {
		c.Divider = 1.0
	}
	return c
}

// MetricSummary rolls qualifying events into count, weighted total and the
// distinct contributor set, for one metric label within one scope (a single
// period or the whole run).
type MetricSummary struct {
	Count        int      `json:"count"`
	TotalWeight  float64  `json:"totalWeight"`
	Contributors []string `json:"contributors"`
}

// NewMetricSummary creates an empty summary.
func NewMetricSummary() *MetricSummary {
	return &MetricSummary{Contributors: []string{}}
}

// FoldEvent folds a single event: count incremented, weight divided by the
// metric's divider, contributor added once.
func (s *MetricSummary) FoldEvent(ev Event, divider float64) {
	s.Count++
	s.TotalWeight += ev.Weight / divider
	s.addContributor(ev.Who)
}

// Fold folds a batch of events with one divider.
func (s *MetricSummary) Fold(events []Event, divider float64) {
	for _, ev := range events {
		s.FoldEvent(ev, divider)
	}
}

func (s *MetricSummary) addContributor(who string) {
	for _, c := range s.Contributors {
		if c == who {
			return
		}
	}
	s.Contributors = append(s.Contributors, who)
}

// ContributorMetrics holds per-label summaries recomputed for a single
// contributor, plus the derived score.
type ContributorMetrics struct {
	Metrics map[string]*MetricSummary `json:"metrics"`
	Score   float64                   `json:"score"`
}

// NewContributorMetrics creates an empty per-contributor breakdown.
func NewContributorMetrics() *ContributorMetrics {
	return &ContributorMetrics{Metrics: make(map[string]*MetricSummary)}
}

// FoldEvent folds one event into the contributor's summary for a label.
func (m *ContributorMetrics) FoldEvent(label string, ev Event, divider float64) {
	sum := m.Metrics[label]
	if sum == nil {
		sum = NewMetricSummary()
		m.Metrics[label] = sum
	}
	sum.FoldEvent(ev, divider)
}
