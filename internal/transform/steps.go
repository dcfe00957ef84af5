package transform

import (
	"fmt"
	"strconv"

	"bandsync/internal/jawbone"
)

// StepTicks fans each summary out into one record per high-resolution step
// interval. Tick ids are composed from the summary xid and the interval
// start so every interval keys its own document. Each interval's timezone
// is resolved against the summary's timezone-change list.
func StepTicks(items []jawbone.Summary) ([]Record, error) {
	var records []Record
	for _, item := range items {
		for _, tick := range item.Ticks {
			tz, err := timezoneAt(item.Details.TZs, tick.Time)
			if err != nil {
				if ie, ok := err.(*DataIntegrityError); ok {
					ie.XID = item.XID
				}
				return nil, err
			}
			records = append(records, Record{
				"type":     "steps",
				"source":   Source,
				"id":       fmt.Sprintf("%s-%d", item.XID, tick.Time),
				"start":    secToMillis(tick.Time),
				"end":      secToMillis(tick.TimeCompleted),
				"timezone": tz,
				"value":    tick.Steps,
			})
		}
	}
	return records, nil
}

// StepSummaries maps each summary to one stepsSummary record. The raw
// hourly_totals map is keyed YYYYMMDDHH; output keys keep only the hour,
// without a leading zero.
func StepSummaries(items []jawbone.Summary) ([]Record, error) {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		hourly := make(map[string]int, len(item.Details.HourlyTotals))
		for key, total := range item.Details.HourlyTotals {
			hour, err := hourOfKey(key)
			if err != nil {
				return nil, &DataIntegrityError{XID: item.XID, Reason: err.Error()}
			}
			hourly[hour] = total.Steps
		}
		records = append(records, Record{
			"type":         "stepsSummary",
			"source":       Source,
			"id":           item.XID,
			"date":         isoDate(item.Date),
			"value":        item.Details.Steps,
			"timezones":    item.Details.TZs,
			"hourlyTotals": hourly,
			"timezone":     item.Details.TZ,
		})
	}
	return records, nil
}

func hourOfKey(yyyymmddhh string) (string, error) {
	if len(yyyymmddhh) != 10 {
		return "", fmt.Errorf("hourly total key %q is not YYYYMMDDHH", yyyymmddhh)
	}
	hour, err := strconv.Atoi(yyyymmddhh[8:])
	if err != nil {
		return "", fmt.Errorf("hourly total key %q is not YYYYMMDDHH", yyyymmddhh)
	}
	return strconv.Itoa(hour), nil
}
