package utils

import (
	"time"
)

// TimeNowUTC returns the current time in UTC.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// LookbackSince returns the start of a lookback window ending at now.
func LookbackSince(now time.Time, hours int) time.Time {
	return now.Add(-time.Duration(hours) * time.Hour)
}

// FormatISO formats t as an ISO-8601 UTC timestamp with second precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
