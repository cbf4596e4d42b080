// Package globaltime is the process clock. Tests freeze it with
// SetMockTime so response timestamps stay deterministic.
package globaltime

import (
	"sync"
	"time"
)

var (
	mu    sync.RWMutex
	clock = time.Now
)

// Now returns the current time from the active clock.
func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return clock()
}

// UTC returns Now in UTC, the zone every served timestamp uses.
func UTC() time.Time {
	return Now().UTC()
}

// SetMockTime freezes the clock at t until ResetTime is called.
func SetMockTime(t time.Time) {
	mu.Lock()
	defer mu.Unlock()
	clock = func() time.Time { return t }
}

// ResetTime restores the wall clock.
func ResetTime() {
	mu.Lock()
	defer mu.Unlock()
	clock = time.Now
}
