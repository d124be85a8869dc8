package dataset

import (
	"time"

	"github.com/nvandessel/defense-datagen/internal/constants"
)

// FormatTimestamp renders t as an ISO-8601 local timestamp with microseconds,
// dropping the fraction entirely when it is zero.
func FormatTimestamp(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(constants.TimestampSecondsLayout)
	}
	return t.Format(constants.TimestampLayout)
}

// daysBefore steps back n exact 24-hour spans from t, ignoring calendar
// and daylight-saving changes.
func daysBefore(t time.Time, n int) time.Time {
	return t.Add(-time.Duration(n) * 24 * time.Hour)
}
