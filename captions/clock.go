package captions

import "time"

// Clock abstracts the timer facility used by the partial-update throttle so
// tests can control time.
type Clock interface {
	Now() time.Time

	// AfterFunc schedules f to run on its own goroutine after d elapses.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled one-shot callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from firing.
	Stop() bool
}

// systemClock is the default Clock backed by the time package.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
