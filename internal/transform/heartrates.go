package transform

import "bandsync/internal/jawbone"

// RestingHeartrates maps heartrate summaries to restingHeartrate records.
// Items without a resting heartrate reading are skipped.
func RestingHeartrates(items []jawbone.Summary) ([]Record, error) {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		if item.Details.RestingHR == 0 {
			continue
		}
		records = append(records, Record{
			"type":     "restingHeartrate",
			"source":   Source,
			"id":       item.XID,
			"date":     isoDate(item.Date),
			"timezone": item.Details.TZ,
			"value":    item.Details.RestingHR,
		})
	}
	return records, nil
}
