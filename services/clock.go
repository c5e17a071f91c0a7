package services

import "time"

// now is the store clock. Both backends keep millisecond precision, so
// timestamps are truncated before they are written.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// notBefore returns t, or prev when t would move the timestamp backwards.
func notBefore(t, prev time.Time) time.Time {
	if t.Before(prev) {
		return prev
	}
	return t
}
