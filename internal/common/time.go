package common

import "time"

// Timestamps on pages, folders and pending operations are epoch milliseconds.
// These helpers keep the conversion in one place.

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime converts epoch milliseconds to a time.Time in UTC.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
