package suppression

import "time"

// Clock abstracts wall-clock reads so the replay and window gates can be
// tested without sleeping. The windows are wall-clock based on purpose:
// they must not stretch when the host event loop slows down.
type Clock interface {
	Now() time.Time
}

// Scheduler abstracts deferred execution: the settle delay before the
// conservation gate and the timed eviction of window hashes.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
