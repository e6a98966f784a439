package postgresadapter

import "time"

// SystemClock supplies UTC wall-clock time for transaction stamps.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
