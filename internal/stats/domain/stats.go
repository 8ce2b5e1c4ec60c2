// Package domain holds the statistics views over a user's event logs.
package domain

// DateLayout is the wire and query format for calendar dates.
const DateLayout = "2006-01-02"

// Frequency is the number of logs recorded for one event name.
type Frequency struct {
	EventName string `json:"event_name"`
	Total     int64  `json:"total"`
}

// DailyCount is one (day, event name) bucket of the trend.
type DailyCount struct {
	Day       string
	EventName string
	Count     int64
}

// Trend maps a day (YYYY-MM-DD) to per-event-name counts. Days and names with no logs are absent.
type Trend map[string]map[string]int64

// BuildTrend folds buckets into a Trend.
func BuildTrend(buckets []DailyCount) Trend {
	t := make(Trend)
	for _, b := range buckets {
		day, ok := t[b.Day]
		if !ok {
			day = make(map[string]int64)
			t[b.Day] = day
		}
		day[b.EventName] += b.Count
	}
	return t
}
