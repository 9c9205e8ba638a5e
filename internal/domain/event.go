package domain

import (
	"encoding/json"
	"time"
)

// UnknownContributor is substituted when a source cannot attribute an event.
const UnknownContributor = "unknown"

// Event is a single timestamped, weighted contribution record.
// Events are created by metric rules during collection and never mutated afterwards.
type Event struct {
	ItemKey string    `json:"itemKey"`
	Who     string    `json:"who"`
	When    time.Time `json:"when"`
	Weight  float64   `json:"weight"`
}

// Item is one raw record supplied by a data source adapter. Metric rules
// inspect it and decide whether and how it contributes events.
type Item struct {
	Key       string
	Actor     string
	Timestamp time.Time
	Numbers   map[string]float64
	Raw       json.RawMessage
}

// SourceResult accumulates the collection output for one (source, metric label)
// pair: events and raw metadata keyed by item. It is mutable during collection
// only and discarded once the report build completes.
type SourceResult struct {
	EventsByItem   map[string][]Event
	MetadataByItem map[string]json.RawMessage
}

// NewSourceResult creates an empty accumulator.
func NewSourceResult() *SourceResult {
	return &SourceResult{
		EventsByItem:   make(map[string][]Event),
		MetadataByItem: make(map[string]json.RawMessage),
	}
}

// Add appends the events collected for one item and records its raw metadata.
func (r *SourceResult) Add(itemKey string, events []Event, metadata json.RawMessage) {
	r.EventsByItem[itemKey] = append(r.EventsByItem[itemKey], events...)
	if _, ok := r.MetadataByItem[itemKey]; !ok && metadata != nil {
		r.MetadataByItem[itemKey] = metadata
	}
}

// Merge unions another result into this one. Event lists are concatenated per
// item key: nothing is dropped and nothing is deduplicated, so repeated
// collection of the same label from several sources stays additive. Metadata
// is kept from whichever source supplied it first.
func (r *SourceResult) Merge(other *SourceResult) {
	for key, events := range other.EventsByItem {
		r.EventsByItem[key] = append(r.EventsByItem[key], events...)
	}
	for key, meta := range other.MetadataByItem {
		if _, ok := r.MetadataByItem[key]; !ok {
			r.MetadataByItem[key] = meta
		}
	}
}

// EventCount returns the total number of events across all items.
func (r *SourceResult) EventCount() int {
	n := 0
	for _, events := range r.EventsByItem {
		n += len(events)
	}
	return n
}
