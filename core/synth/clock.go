package synth

import "time"

// Timer is a cancelable one-shot.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time and one-shot timers so the engine's auto-stop
// behavior can run against a deterministic fake in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// SystemClock is the real thing.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
