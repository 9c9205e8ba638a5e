package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	apperrors "github.com/IstiN/dmtools-sub007/internal/errors"
	"github.com/IstiN/dmtools-sub007/internal/metric"
)

// CollectFunc receives one collected item: its key, the events the metric rule
// derived from it, and the item's raw metadata.
type CollectFunc func(itemKey string, events []domain.Event, metadata json.RawMessage) error

// Source is a pluggable data source adapter. Collect streams every item the
// source yields through the metric rule and the per-item callback. Collection
// is the only phase that performs network I/O.
type Source interface {
	Name() string
	Collect(ctx context.Context, rule metric.Rule, fn CollectFunc) error
}

// Factory builds a source adapter from its configuration.
type Factory func(cfg domain.SourceConfig) (Source, error)

// Registry maps source type names to adapter factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in adapters. The GitHub token
// may be empty when no github source is configured.
func NewRegistry(githubToken string) *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("github", func(cfg domain.SourceConfig) (Source, error) {
		return NewGitHubSource(cfg, githubToken)
	})
	r.Register("file", NewFileSource)
	return r
}

// Register adds a factory for a source type, replacing any previous one.
func (r *Registry) Register(sourceType string, f Factory) {
	r.factories[sourceType] = f
}

// Build constructs the adapter for one source configuration. Unknown types
// and bad parameters are configuration errors.
func (r *Registry) Build(cfg domain.SourceConfig) (Source, error) {
	f, ok := r.factories[cfg.Type]
	if !ok {
		return nil, apperrors.NewInvalidConfigError(
			fmt.Sprintf("data source %q: unsupported type %q", cfg.Name, cfg.Type))
	}
	return f(cfg)
}

// Configured builds every source the configs describe, best-effort: a failing
// provider is logged and skipped so the others are still discovered.
func (r *Registry) Configured(cfgs []domain.SourceConfig) []Source {
	var sources []Source
	for _, cfg := range cfgs {
		src, err := r.Build(cfg)
		if err != nil {
			log.Printf("Skipping data source %q: %v", cfg.Name, err)
			continue
		}
		sources = append(sources, src)
	}
	return sources
}
