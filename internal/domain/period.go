package domain

import "time"

// Grouping is the scheme used to partition a report's date range into periods.
type Grouping string

const (
	GroupingDaily     Grouping = "daily"
	GroupingWeekly    Grouping = "weekly"
	GroupingBiWeekly  Grouping = "biweekly"
	GroupingMonthly   Grouping = "monthly"
	GroupingQuarterly Grouping = "quarterly"
	GroupingYearly    Grouping = "yearly"
	GroupingStatic    Grouping = "static"
)

// GroupingConfig configures one period partitioning of the report span.
type GroupingConfig struct {
	Type     Grouping       `yaml:"type" json:"type"`
	DayShift int            `yaml:"dayShift" json:"dayShift,omitempty"`
	Periods  []StaticPeriod `yaml:"periods" json:"periods,omitempty"`
}

// StaticPeriod is an explicitly supplied period for the "static" grouping.
// Dates use the yyyy-MM-dd form.
type StaticPeriod struct {
	Name  string `yaml:"name" json:"name"`
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// TimePeriod is a named time window with inclusive day boundaries. Start
// carries 00:00:00.000 and End 23:59:59.999 so that inclusion checks cover
// whole calendar days.
type TimePeriod struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether a timestamp falls within the period, boundaries
// included.
func (p TimePeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// StartOfDay floors a timestamp to 00:00:00.000 of its calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay ceils a timestamp to 23:59:59.999 of its calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
