package metric

import (
	"fmt"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	apperrors "github.com/IstiN/dmtools-sub007/internal/errors"
)

// Rule inspects one collected item and decides whether and how it contributes
// events. Implementations must be stateless: one rule instance is reused for
// every item a source yields.
type Rule interface {
	// Config returns the normalized metric configuration the rule was built from.
	Config() domain.MetricConfig

	// Apply derives the events an item contributes. The second return value is
	// false when the item does not qualify for this metric.
	Apply(item domain.Item) ([]domain.Event, bool)
}

// Rule names accepted in metric configurations.
const (
	RuleActivity    = "activity"
	RuleFieldWeight = "field-weight"
)

// New builds the rule named by the configuration. An empty rule name selects
// the activity rule.
func New(cfg domain.MetricConfig) (Rule, error) {
	cfg = cfg.Normalized()
	switch cfg.Rule {
	case "", RuleActivity:
		return &activityRule{cfg: cfg}, nil
	case RuleFieldWeight:
		if cfg.WeightField == "" {
			return nil, apperrors.NewInvalidConfigError(
				fmt.Sprintf("metric %q: field-weight rule requires weightField", cfg.Name))
		}
		return &fieldWeightRule{cfg: cfg}, nil
	default:
		return nil, apperrors.NewInvalidConfigError(
			fmt.Sprintf("metric %q: unknown rule %q", cfg.Name, cfg.Rule))
	}
}

// activityRule contributes one unit-weight event per item at the item's
// timestamp, attributed to the item's actor.
type activityRule struct {
	cfg domain.MetricConfig
}

func (r *activityRule) Config() domain.MetricConfig { return r.cfg }

func (r *activityRule) Apply(item domain.Item) ([]domain.Event, bool) {
	if item.Timestamp.IsZero() {
		return nil, false
	}
	return []domain.Event{{
		ItemKey: item.Key,
		Who:     actorOf(item),
		When:    item.Timestamp,
		Weight:  1.0,
	}}, true
}

// fieldWeightRule contributes one event per item weighted by a numeric field,
// for story-point style metrics. Items missing the field do not qualify.
type fieldWeightRule struct {
	cfg domain.MetricConfig
}

func (r *fieldWeightRule) Config() domain.MetricConfig { return r.cfg }

func (r *fieldWeightRule) Apply(item domain.Item) ([]domain.Event, bool) {
	if item.Timestamp.IsZero() {
		return nil, false
	}
	weight, ok := item.Numbers[r.cfg.WeightField]
	if !ok {
		return nil, false
	}
	return []domain.Event{{
		ItemKey: item.Key,
		Who:     actorOf(item),
		When:    item.Timestamp,
		Weight:  weight,
	}}, true
}

func actorOf(item domain.Item) string {
	if item.Actor == "" {
		return domain.UnknownContributor
	}
	return item.Actor
}
