package jawbone

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Summary is one item from a top-level listing page. Details carries the
// type-specific aggregates; Ticks is populated after a detail fetch has been
// merged back onto the summary and is never present in the page payload
// itself.
type Summary struct {
	XID     string  `json:"xid"`
	Title   string  `json:"title"`
	Date    int     `json:"date"`
	Details Details `json:"details"`
	Ticks   []Tick  `json:"-"`
}

// Details holds the union of per-type summary aggregates. Jawbone returns
// only the fields relevant to the record type; the rest stay zero.
type Details struct {
	TZ           string                 `json:"tz"`
	TZs          []TimezoneChange       `json:"tzs"`
	Steps        int                    `json:"steps"`
	HourlyTotals map[string]HourlyTotal `json:"hourly_totals"`
	RestingHR    int                    `json:"resting_heartrate"`
	AsleepTime   int64                  `json:"asleep_time"`
	AwakeTime    int64                  `json:"awake_time"`
	Duration     int64                  `json:"duration"`
	Awakenings   int                    `json:"awakenings"`
	Awake        int64                  `json:"awake"`
	Deep         int64                  `json:"deep"`
	Light        int64                  `json:"light"`
	REM          int64                  `json:"rem"`
}

// TimezoneChange is one entry of a summary's ordered timezone-change list,
// sent on the wire as a two-element [epoch_seconds, name] tuple.
type TimezoneChange struct {
	Start int64
	Name  string
}

func (tc *TimezoneChange) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 2 {
		return fmt.Errorf("timezone change tuple has %d elements, want 2", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &tc.Start); err != nil {
		return fmt.Errorf("timezone change start: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &tc.Name); err != nil {
		return fmt.Errorf("timezone change name: %w", err)
	}
	return nil
}

func (tc TimezoneChange) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{tc.Start, tc.Name})
}

// HourlyTotal is one bucket of a steps summary's hourly_totals map, keyed by
// a YYYYMMDDHH string in the raw payload.
type HourlyTotal struct {
	Steps    int `json:"steps"`
	Distance int `json:"distance"`
	Calories int `json:"calories"`
}

// Tick is one high-resolution sub-measurement. Steps ticks carry a time
// range and a count; sleep ticks carry a time point and a phase depth code.
type Tick struct {
	Time          int64 `json:"time"`
	TimeCompleted int64 `json:"time_completed"`
	Steps         int   `json:"steps"`
	Depth         int   `json:"depth"`
}

// Page is one decoded top-level listing: the items of the page plus the
// absolute URL of the following page. Next is empty when the source signals
// no further pages.
type Page struct {
	Items []Summary
	Next  string
}

// Detail is one decoded high-resolution response, echoing the xid it was
// requested for so the caller can correlate it with its summary.
type Detail struct {
	XID   string
	Ticks []Tick
}

type pageEnvelope struct {
	Data *struct {
		Items []Summary `json:"items"`
		Links struct {
			Next string `json:"next"`
		} `json:"links"`
	} `json:"data"`
}

type detailEnvelope struct {
	Data []Tick `json:"data"`
}
