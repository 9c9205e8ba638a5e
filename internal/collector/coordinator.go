package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	"github.com/IstiN/dmtools-sub007/internal/metric"
)

// Collected is the consolidated outcome of one collection pass: results keyed
// by source name then metric label, plus the weight flags and non-1.0 dividers
// observed in the metric configurations. It is an explicit snapshot handed to
// the aggregators, so the coordinator stays reentrant across report requests.
type Collected struct {
	BySource     map[string]map[string]*domain.SourceResult
	WeightLabels map[string]bool
	Dividers     map[string]float64
}

// DividerFor returns the divider applied to a label's event weights.
func (c *Collected) DividerFor(label string) float64 {
	if d, ok := c.Dividers[label]; ok {
		return d
	}
	return 1.0
}

// SortedWeightLabels returns the labels flagged as weight-style metrics, sorted.
func (c *Collected) SortedWeightLabels() []string {
	var labels []string
	for label, flagged := range c.WeightLabels {
		if flagged {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

// SourceNames returns the collected source names, sorted.
func (c *Collected) SourceNames() []string {
	names := make([]string, 0, len(c.BySource))
	for name := range c.BySource {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Coordinator runs every configured (data source x metric) pair once and
// merges the results. Collection is fail-fast: the first source or metric
// failure aborts the pass with no partial result.
type Coordinator struct {
	registry *Registry

	// Guards the accumulation maps should a future adapter populate them
	// from multiple goroutines. The reference pipeline collects sequentially.
	mu sync.Mutex
}

// NewCoordinator creates a coordinator over a source registry.
func NewCoordinator(registry *Registry) *Coordinator {
	return &Coordinator{registry: registry}
}

// Collect performs the single collection pass for a report. Contributor
// aliases are normalized here so every later stage sees canonical identities.
// When two configured sources share a name and contribute the same metric
// label, their per-item event lists are unioned, never replaced.
func (c *Coordinator) Collect(ctx context.Context, cfgs []domain.SourceConfig, aliases map[string]string) (*Collected, error) {
	out := &Collected{
		BySource:     make(map[string]map[string]*domain.SourceResult),
		WeightLabels: make(map[string]bool),
		Dividers:     make(map[string]float64),
	}

	for _, sc := range cfgs {
		src, err := c.registry.Build(sc)
		if err != nil {
			return nil, err
		}

		for _, mc := range sc.Metrics {
			mc = mc.Normalized()
			rule, err := metric.New(mc)
			if err != nil {
				return nil, err
			}

			if mc.IsWeight {
				out.WeightLabels[mc.Label] = true
			}
			if mc.Divider != 1.0 {
				out.Dividers[mc.Label] = mc.Divider
			}

			result := domain.NewSourceResult()
			err = src.Collect(ctx, rule, func(itemKey string, events []domain.Event, metadata json.RawMessage) error {
				for i := range events {
					events[i].Who = canonical(events[i].Who, aliases)
				}
				result.Add(itemKey, events, metadata)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("collecting %q from %q: %w", mc.Label, src.Name(), err)
			}

			c.mergeResult(out, src.Name(), mc.Label, result)
		}
	}

	return out, nil
}

func (c *Coordinator) mergeResult(out *Collected, sourceName, label string, result *domain.SourceResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byLabel := out.BySource[sourceName]
	if byLabel == nil {
		byLabel = make(map[string]*domain.SourceResult)
		out.BySource[sourceName] = byLabel
	}
	if existing := byLabel[label]; existing != nil {
		existing.Merge(result)
		return
	}
	byLabel[label] = result
}

func canonical(who string, aliases map[string]string) string {
	if who == "" {
		return domain.UnknownContributor
	}
	if canon, ok := aliases[who]; ok {
		return canon
	}
	return who
}
