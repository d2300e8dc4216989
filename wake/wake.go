// Package wake provides single-shot coalescing notifications that are
// serviced by one control loop.
//
// A Source is signalled with Ping. Signalling a source that is already
// signalled is a no-op, so any number of pings between two dispatches
// result in exactly one callback invocation. The loop owner selects on
// Ready and calls Dispatch from its control goroutine:
//
//	loop := wake.NewLoop()
//	src := loop.NewSource(func() { render() })
//	src.Ping()
//	src.Ping() // absorbed
//
//	for range loop.Ready() {
//	    loop.Dispatch() // render runs once
//	}
package wake

import (
	"sync"
	"sync/atomic"
)

// Loop collects signalled sources until the control goroutine dispatches them.
//
// Ping may be called from any goroutine. Dispatch must only be called from
// the goroutine that owns the loop.
type Loop struct {
	mu     sync.Mutex
	ready  []*Source
	notify chan struct{}
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{notify: make(chan struct{}, 1)}
}

// Ready returns a channel that receives a value after at least one source
// has been signalled since the last Dispatch.
func (l *Loop) Ready() <-chan struct{} {
	return l.notify
}

// NewSource registers a callback with the loop. The callback runs on the
// dispatching goroutine once per signalled period.
func (l *Loop) NewSource(fn func()) *Source {
	return &Source{loop: l, fn: fn}
}

// Pending returns the number of sources waiting for dispatch.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ready)
}

// Dispatch runs the callback of every signalled source and returns how many
// callbacks ran. A source's signal is cleared before its callback runs, so a
// callback may ping its own source to be dispatched again on the next call.
func (l *Loop) Dispatch() int {
	l.mu.Lock()
	ready := l.ready
	l.ready = nil
	l.mu.Unlock()

	n := 0
	for _, s := range ready {
		s.signalled.Store(false)
		if s.closed.Load() {
			continue
		}
		s.fn()
		n++
	}
	return n
}

func (l *Loop) enqueue(s *Source) {
	l.mu.Lock()
	l.ready = append(l.ready, s)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
		// Already notified; the next Dispatch drains every queued source.
	}
}

// Source is a single-shot coalescing notification.
type Source struct {
	loop      *Loop
	fn        func()
	signalled atomic.Bool
	closed    atomic.Bool
}

// Ping signals the source. It reports whether this call scheduled a new
// dispatch; false means the source was already signalled or is closed.
func (s *Source) Ping() bool {
	if s.closed.Load() {
		return false
	}
	if !s.signalled.CompareAndSwap(false, true) {
		return false
	}
	s.loop.enqueue(s)
	return true
}

// Signalled reports whether a dispatch is outstanding for the source.
func (s *Source) Signalled() bool {
	return s.signalled.Load()
}

// Close tears the source down. An outstanding signal is dropped and later
// pings are ignored. Close is idempotent.
func (s *Source) Close() {
	s.closed.Store(true)
}

// Closed reports whether Close was called.
func (s *Source) Closed() bool {
	return s.closed.Load()
}
