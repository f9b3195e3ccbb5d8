package domain

import "time"

// DayOf buckets a timestamp into its calendar day in UTC.
//
// UTC is the fixed reference zone for the one-record-per-day rule. Using the
// deployment's local zone would make the day boundary drift between hosts, so
// every store implementation must bucket with this function.
func DayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
