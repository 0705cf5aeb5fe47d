package responder

import "time"

// TimestampLayout is the local-time layout written into TurnRecord.Time.
const TimestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// parseTimestamp reads a TurnRecord.Time value in the local zone. Unparseable values
// report ok=false so callers can skip them.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
