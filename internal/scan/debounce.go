package scan

import (
	"sync"
	"time"
)

// DefaultCooldown is the window during which a repeat scan of the same code
// is suppressed.
const DefaultCooldown = 2 * time.Second

// Debouncer suppresses duplicate rapid-fire scans of the same code. A
// different code is always accepted; the same code is accepted again once
// the cooldown has elapsed. Expiry is a pure time comparison, no timers.
type Debouncer struct {
	mu            sync.Mutex
	cooldown      time.Duration
	lastCode      string
	cooldownUntil time.Time
	now           func() time.Time
}

func NewDebouncer(cooldown time.Duration) *Debouncer {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Debouncer{cooldown: cooldown, now: time.Now}
}

// Accept reports whether the event should be forwarded. Accepting arms the
// cooldown against code.
func (d *Debouncer) Accept(code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if code == d.lastCode && now.Before(d.cooldownUntil) {
		return false
	}

	d.lastCode = code
	d.cooldownUntil = now.Add(d.cooldown)
	return true
}

// Reset clears the cooldown so any code, including the last one, is
// accepted on the next event.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastCode = ""
	d.cooldownUntil = time.Time{}
}
