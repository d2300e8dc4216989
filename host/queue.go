package host

import "sync"

// Queue is an unbounded event queue feeding a channel.
//
// Push never blocks, so window code running on the compositor's control
// goroutine can queue events (e.g. PresentCompleted from Present) while
// that same goroutine is the channel's only reader.
type Queue struct {
	mu     sync.Mutex
	items  []Event
	closed bool

	wake chan struct{}
	done chan struct{}
	out  chan Event
}

// NewQueue creates a queue and starts delivering to its channel.
func NewQueue() *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan Event),
	}
	go q.pump()
	return q
}

// Events returns the delivery channel. It is closed after Close.
func (q *Queue) Events() <-chan Event {
	return q.out
}

// Push queues ev. Events pushed after Close are dropped.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, ev)
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close stops delivery. Undelivered events are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.items = nil
	close(q.done)
}

func (q *Queue) pump() {
	defer close(q.out)
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-q.done:
				return
			}
		}
		ev := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		select {
		case q.out <- ev:
		case <-q.done:
			return
		}
	}
}
