// Package transform reshapes raw Jawbone summaries into the flat normalized
// record schema the document store holds. Each record type registers a set
// of pure transformer functions, one per output collection.
package transform

import (
	"fmt"
	"sort"
	"time"

	"bandsync/internal/jawbone"
)

// Source tag stamped on every normalized record.
const Source = "jawbone"

// Record is one normalized output document. Every record destined for
// upload must carry a non-empty "id"; it becomes the document-store key.
type Record map[string]any

// ID returns the record's document key, or "" when missing.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Group is the output of one transformer: the destination collection plus
// the records bound for it.
type Group struct {
	Collection string
	Records    []Record
}

// Func maps a batch of summaries (with ticks merged on, for detail-bearing
// types) to normalized records.
type Func func(items []jawbone.Summary) ([]Record, error)

// output pairs a transformer with its destination collection.
type output struct {
	Collection string
	Fn         Func
}

// Entry is the transformer set for one record type, resolved once at
// configuration time.
type Entry struct {
	// WithTicks marks types whose summaries need a per-record
	// high-resolution fetch before transformation.
	WithTicks bool
	outputs   []output
}

var registry = map[string]Entry{
	"heartrates": {
		outputs: []output{
			{Collection: "restingHeartrates", Fn: RestingHeartrates},
		},
	},
	"sleeps": {
		WithTicks: true,
		outputs: []output{
			{Collection: "sleeps", Fn: Sleeps},
		},
	},
	"steps": {
		WithTicks: true,
		outputs: []output{
			{Collection: "steps", Fn: StepTicks},
			{Collection: "stepsSummaries", Fn: StepSummaries},
		},
	},
}

// Lookup resolves a record type to its transformer set. Unknown types are
// a configuration error, rejected before any fetching starts.
func Lookup(recordType string) (Entry, error) {
	entry, ok := registry[recordType]
	if !ok {
		return Entry{}, fmt.Errorf("transform: unknown record type %q (supported: %v)", recordType, RegisteredTypes())
	}
	return entry, nil
}

// RegisteredTypes lists the record types with transformer sets, sorted.
func RegisteredTypes() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Collections lists every destination collection any registered type
// writes to, sorted and deduplicated.
func Collections() []string {
	seen := map[string]bool{}
	for _, entry := range registry {
		for _, out := range entry.outputs {
			seen[out.Collection] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs every transformer of the entry over the batch, producing one
// tagged group per transformer in registration order.
func (e Entry) Apply(items []jawbone.Summary) ([]Group, error) {
	groups := make([]Group, 0, len(e.outputs))
	for _, out := range e.outputs {
		records, err := out.Fn(items)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{Collection: out.Collection, Records: records})
	}
	return groups, nil
}

// timezoneHorizon bounds the last half-open interval of a timezone-change
// list: epoch seconds for 3000-01-01 UTC.
const timezoneHorizon = 32503708800

// timezoneAt resolves which timezone a point in time (epoch seconds) falls
// into, by locating it within the summary's ordered half-open
// [start_i, start_i+1) intervals. The last interval is unbounded up to the
// horizon. An empty list, or a time before the first change, is a
// data-integrity fault.
func timezoneAt(tzs []jawbone.TimezoneChange, t int64) (string, error) {
	for i, tz := range tzs {
		end := int64(timezoneHorizon)
		if i+1 < len(tzs) {
			end = tzs[i+1].Start
		}
		if t >= tz.Start && t < end {
			return tz.Name, nil
		}
	}
	return "", &DataIntegrityError{
		Reason: fmt.Sprintf("no timezone interval covers time %d (list of %d changes)", t, len(tzs)),
	}
}

// isoDate renders a numeric YYYYMMDD date as YYYY-MM-DD.
func isoDate(yyyymmdd int) string {
	return fmt.Sprintf("%04d-%02d-%02d", yyyymmdd/10000, yyyymmdd/100%100, yyyymmdd%100)
}

// isoTime renders epoch seconds as an RFC 3339 instant in UTC.
func isoTime(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// secToMillis converts a duration or instant from seconds to milliseconds,
// the single time unit all normalized numeric time fields use.
func secToMillis(sec int64) int64 {
	return sec * 1000
}
