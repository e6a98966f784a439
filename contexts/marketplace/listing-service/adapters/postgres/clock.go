package postgresadapter

import "time"

// SystemClock supplies UTC wall-clock time for listing and history stamps.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
