// Package notifier provides a broadcast mechanism for SSE updates.
package notifier

import "sync"

// Event flags which section of the widget changed. Events are bitmasks so
// several changes can be delivered in one ping.
type Event uint8

// Event flags.
const (
	EventEditor Event = 1 << iota
	EventQR
	EventScan
)

// Has reports whether e includes all flags of other.
func (e Event) Has(other Event) bool {
	return e&other == other
}

// Notifier broadcasts events to all subscribed listeners.
// Listeners receive the pending events and should re-read the widget state.
type Notifier struct {
	mu        sync.Mutex
	listeners map[chan Event]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives events.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Listeners returns the number of subscribed listeners.
func (n *Notifier) Listeners() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// Broadcast sends ev to all listeners without blocking. When a listener has
// not consumed its previous event yet, the two are merged.
func (n *Notifier) Broadcast(ev Event) {
	if ev == 0 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.listeners {
		select {
		case ch <- ev:
			continue
		default:
		}
		// Buffer full: take the pending event and resend the union.
		// Only broadcasters send, and they hold the lock, so the
		// resend cannot block.
		merged := ev
		select {
		case old := <-ch:
			merged |= old
		default:
		}
		ch <- merged
	}
}
