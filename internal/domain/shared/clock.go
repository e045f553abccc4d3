package shared

import "time"

// Now returns the current time in UTC at microsecond precision, the resolution every
// supported store keeps, so timestamps compare the same before and after a round trip
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
