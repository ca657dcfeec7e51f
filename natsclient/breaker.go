package natsclient

import (
	"sync/atomic"
	"time"
)

// breaker tracks connection failures and decides when the circuit opens.
// Failures accumulate per round; crossing the threshold trips the breaker
// and starts a new round. The backoff doubles on every trip up to the cap
// and snaps back to one second on reset.
type breaker struct {
	threshold int32
	maxWait   time.Duration

	total   atomic.Int32 // failures since the last reset, surfaced in Status
	round   atomic.Int32 // failures in the current round
	backoff atomic.Value // time.Duration
	last    atomic.Value // time.Time of the most recent failure
}

func newBreaker(threshold int32, maxWait time.Duration) *breaker {
	b := &breaker{threshold: threshold, maxWait: maxWait}
	b.backoff.Store(time.Second)
	b.last.Store(time.Time{})
	return b
}

// record notes one failure and reports whether this round just crossed
// the threshold. The round counter resets on a trip so consecutive
// trips each require a full round of failures.
func (b *breaker) record() (tripped bool) {
	b.total.Add(1)
	b.last.Store(time.Now())

	if b.round.Add(1) < b.threshold {
		return false
	}
	b.round.Store(0)
	return true
}

// grow doubles the backoff up to maxWait and returns the value that was
// in effect before doubling. Callers schedule the next probe with the
// returned duration.
func (b *breaker) grow() time.Duration {
	cur := b.backoff.Load().(time.Duration)
	b.backoff.Store(min(cur*2, b.maxWait))
	return cur
}

func (b *breaker) reset() {
	b.total.Store(0)
	b.round.Store(0)
	b.backoff.Store(time.Second)
	b.last.Store(time.Time{})
}

func (b *breaker) failures() int32 {
	return b.total.Load()
}

func (b *breaker) wait() time.Duration {
	return b.backoff.Load().(time.Duration)
}

func (b *breaker) lastFailure() time.Time {
	return b.last.Load().(time.Time)
}
