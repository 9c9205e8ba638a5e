package aggregator

import (
	"strconv"
	"strings"

	"github.com/IstiN/dmtools-sub007/internal/domain"
)

// EvaluateFormula resolves ${label} placeholders in a score formula against
// the given summaries, substituting each with the label's total weight.
// Unknown labels substitute as 0.
//
// Expression parsing is not implemented yet: after substitution the score is
// always 0.0, and downstream consumers currently rely on that.
// TODO: parse the substituted expression with a small arithmetic evaluator.
func EvaluateFormula(formula string, metrics map[string]*domain.MetricSummary) (float64, error) {
	if formula == "" {
		return 0.0, nil
	}

	resolved := formula
	for label, sum := range metrics {
		placeholder := "${" + label + "}"
		value := strconv.FormatFloat(sum.TotalWeight, 'f', -1, 64)
		resolved = strings.ReplaceAll(resolved, placeholder, value)
	}
	_ = resolved

	return 0.0, nil
}

// scoreOrZero evaluates a formula and swallows any failure: reports should
// not crash on one bad formula, the affected entity just scores 0.0.
func scoreOrZero(formula string, metrics map[string]*domain.MetricSummary) float64 {
	score, err := EvaluateFormula(formula, metrics)
	if err != nil {
		return 0.0
	}
	return score
}
