package session

import (
	"sync"
	"time"
)

// EventType marks what happened to a session.
type EventType string

const (
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"
)

// Event is one session change, fanned out to all subscribers.
type Event struct {
	Type      EventType
	UserID    uint
	Email     string
	SessionID string
	At        time.Time
}

type subscriber struct {
	ch   chan Event
	once sync.Once
}

// Broadcaster fans session changes out to subscribers, one-to-many with
// last-value-wins semantics: a subscriber that has not yet drained its
// previous event gets it replaced, never queued behind it.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]*subscriber)}
}

// Subscribe registers a listener and returns its receive channel plus an
// unsubscribe function. Unsubscribe is idempotent, closes the channel,
// and must be called when the listener is torn down so a disposed
// listener can never be signalled again.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscriber{ch: make(chan Event, 1)}
	b.subs[id] = sub

	unsubscribe := func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		sub.once.Do(func() { close(sub.ch) })
	}
	return sub.ch, unsubscribe
}

// Publish delivers ev to every current subscriber without blocking.
func (b *Broadcaster) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			// replace the undrained event with the latest one
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- ev:
			default:
			}
		}
	}
}
