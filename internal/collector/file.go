package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	apperrors "github.com/IstiN/dmtools-sub007/internal/errors"
	"github.com/IstiN/dmtools-sub007/internal/metric"
)

// fileSource reads items from a JSON fixture file: an array of fileItem
// records. Useful for exported tracker dumps and for exercising the pipeline
// without network access.
type fileSource struct {
	name string
	path string
}

type fileItem struct {
	Key       string             `json:"key"`
	Actor     string             `json:"actor"`
	Timestamp string             `json:"timestamp"`
	Numbers   map[string]float64 `json:"numbers,omitempty"`
	Metadata  json.RawMessage    `json:"metadata,omitempty"`
}

// NewFileSource creates a source adapter reading items from the "path" param.
func NewFileSource(cfg domain.SourceConfig) (Source, error) {
	path := cfg.Params["path"]
	if path == "" {
		return nil, apperrors.NewInvalidConfigError(
			fmt.Sprintf("data source %q: file sources require a path param", cfg.Name))
	}
	return &fileSource{name: cfg.Name, path: path}, nil
}

func (s *fileSource) Name() string { return s.name }

// Collect parses the fixture file and streams every item through the rule.
func (s *fileSource) Collect(ctx context.Context, rule metric.Rule, fn CollectFunc) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read items from %s: %w", s.path, err)
	}

	var items []fileItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to parse items from %s: %w", s.path, err)
	}

	for _, fi := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		when, err := parseTimestamp(fi.Timestamp)
		if err != nil {
			return fmt.Errorf("item %q in %s: %w", fi.Key, s.path, err)
		}

		item := domain.Item{
			Key:       fi.Key,
			Actor:     fi.Actor,
			Timestamp: when,
			Numbers:   fi.Numbers,
			Raw:       fi.Metadata,
		}

		events, ok := rule.Apply(item)
		if !ok || len(events) == 0 {
			continue
		}
		if err := fn(item.Key, events, item.Raw); err != nil {
			return err
		}
	}

	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05.999",
		"2006-01-02T15:04:05",
		domain.DateFormat,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
