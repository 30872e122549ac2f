package eventbus

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"tapdash/core/event"
)

type subscription struct {
	id        string
	handler   Handler
	sessionID string // empty means all events
}

type channelBus struct {
	events  chan event.Event
	subs    map[string]*subscription
	mu      sync.RWMutex
	closed  atomic.Bool
	dropped atomic.Uint64
	wg      sync.WaitGroup
}

// New creates a bus with the given buffer size and starts its dispatch
// goroutine.
func New(bufferSize int) Bus {
	if bufferSize <= 0 {
		bufferSize = 128
	}

	b := &channelBus{
		events: make(chan event.Event, bufferSize),
		subs:   make(map[string]*subscription),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

func (b *channelBus) Publish(e event.Event) {
	if b.closed.Load() {
		return
	}

	select {
	case b.events <- e:
	default:
		n := b.dropped.Add(1)
		slog.Warn("event bus buffer full, event dropped",
			"event", e.EventName(), "total_dropped", n)
	}
}

func (b *channelBus) Subscribe(handler Handler) string {
	return b.subscribe("", handler)
}

func (b *channelBus) SubscribeSession(sessionID string, handler Handler) string {
	return b.subscribe(sessionID, handler)
}

func (b *channelBus) subscribe(sessionID string, handler Handler) string {
	id := uuid.NewString()

	b.mu.Lock()
	b.subs[id] = &subscription{id: id, handler: handler, sessionID: sessionID}
	b.mu.Unlock()

	return id
}

func (b *channelBus) Unsubscribe(id string) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

func (b *channelBus) Close() {
	if b.closed.Swap(true) {
		return
	}

	close(b.events)
	b.wg.Wait()
}

func (b *channelBus) dispatch() {
	defer b.wg.Done()

	for e := range b.events {
		b.deliver(e)
	}
}

func (b *channelBus) deliver(e event.Event) {
	b.mu.RLock()
	subs := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	var eventSessionID string
	if se, ok := e.(event.SessionEvent); ok {
		eventSessionID = se.SessionID()
	}

	for _, s := range subs {
		if s.sessionID != "" && s.sessionID != eventSessionID {
			continue
		}
		b.call(s, e)
	}
}

// call isolates handler panics so one bad subscriber cannot take down the
// dispatch loop or starve the remaining subscribers.
func (b *channelBus) call(s *subscription, e event.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked",
				"event", e.EventName(), "subscription", s.id, "panic", r)
		}
	}()
	s.handler(e)
}
