package assist

import "time"

// Busy marks an outstanding call. Triggers that arrive while it is held are
// dropped, not queued. Owned by the UI loop, so it needs no lock.
type Busy struct {
	held bool
}

// TryAcquire takes the flag, or reports false if a call is in flight.
func (b *Busy) TryAcquire() bool {
	if b.held {
		return false
	}
	b.held = true
	return true
}

// Release must run on success and on error.
func (b *Busy) Release() { b.held = false }

func (b *Busy) Held() bool { return b.held }

// Debouncer enforces a minimum interval between auto-triggered analyses.
type Debouncer struct {
	interval time.Duration
	last     time.Time
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Allow reports whether an analysis may start at now, and records it if so.
func (d *Debouncer) Allow(now time.Time) bool {
	if !d.last.IsZero() && now.Sub(d.last) < d.interval {
		return false
	}
	d.last = now
	return true
}

func (d *Debouncer) SetInterval(interval time.Duration) { d.interval = interval }
