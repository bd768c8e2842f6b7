// Package tokenevent provides the single-producer wake signal the
// adoption server uses to tell the WSS manager that a fresh mgmt token
// has been persisted to settings: a mutex-guarded broadcast channel that
// every waiter picks up once, then is replaced for the next signal.
package tokenevent

import "sync"

// Event is an edge-triggered wake signal: Signal() can be called any
// number of times, and each call wakes every goroutine currently blocked
// on a channel obtained from C. The channel is replaced inside Signal, so
// a C call made after a Signal returns a fresh channel that stays open
// until the next Signal.
type Event struct {
	mu sync.Mutex
	ch chan struct{}
}

func New() *Event {
	return &Event{ch: make(chan struct{})}
}

// Signal wakes all current waiters exactly once. It is safe to call from
// multiple goroutines, though the adoption server is its only producer.
func (e *Event) Signal() {
	e.mu.Lock()
	defer e.mu.Unlock()
	close(e.ch)
	e.ch = make(chan struct{})
}

// C returns the current wake channel. It is closed on the next Signal
// call; callers should re-fetch C after waking to avoid missing a
// subsequent signal.
func (e *Event) C() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ch
}
