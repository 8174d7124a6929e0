package lifecycle

import "time"

// Clock supplies the current time to every lifecycle operation so that
// tests can pin "now" deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
