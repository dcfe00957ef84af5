package transform

import (
	"fmt"

	"bandsync/internal/jawbone"
)

var phaseNames = map[int]string{
	1: "awake",
	2: "light",
	3: "deep",
}

// Sleeps maps each sleep summary, with its phase ticks merged on, to one
// sleep record. Durations arrive in seconds and leave in milliseconds;
// instants become RFC 3339 strings.
func Sleeps(items []jawbone.Summary) ([]Record, error) {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		phases := make([]Record, 0, len(item.Ticks))
		for _, tick := range item.Ticks {
			name, ok := phaseNames[tick.Depth]
			if !ok {
				return nil, &DataIntegrityError{
					XID:    item.XID,
					Reason: fmt.Sprintf("unknown sleep phase code %d", tick.Depth),
				}
			}
			phases = append(phases, Record{
				"start": isoTime(tick.Time),
				"phase": name,
			})
		}
		records = append(records, Record{
			"type":       "sleep",
			"source":     Source,
			"id":         item.XID,
			"date":       isoDate(item.Date),
			"start":      isoTime(item.Details.AsleepTime),
			"end":        isoTime(item.Details.AwakeTime),
			"timezone":   item.Details.TZ,
			"value":      secToMillis(item.Details.Duration),
			"awakenings": item.Details.Awakenings,
			"awake":      secToMillis(item.Details.Awake),
			"deep":       secToMillis(item.Details.Deep),
			"light":      secToMillis(item.Details.Light),
			"rem":        secToMillis(item.Details.REM),
			"phases":     phases,
		})
	}
	return records, nil
}
