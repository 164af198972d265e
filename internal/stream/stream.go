package stream

import (
	"context"
	"sync"
	"time"
)

// OrderEvent describes one order lifecycle transition for live consumers
// (the demo UI subscribes over SSE).
type OrderEvent struct {
	Type      string    `json:"type"` // created | cancelled | fulfilled | deleted | reset
	OrderID   string    `json:"order_id,omitempty"`
	Org       string    `json:"org,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Stream fan-outs order events to all active subscribers.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan OrderEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan OrderEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan OrderEvent {
	ch := make(chan OrderEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers. Nil receivers are a no-op so
// callers can leave streaming unconfigured.
func (s *Stream) Publish(evt OrderEvent) {
	if s == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
