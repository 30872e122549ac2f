// Package eventbus provides asynchronous publish/subscribe delivery of
// session events to the coordinator and any attached observers.
package eventbus

import (
	"tapdash/core/event"
)

// Handler is a function invoked for each delivered event. Handlers run on
// the bus dispatch goroutine and must not block.
type Handler func(e event.Event)

// Bus decouples event producers (sessions) from consumers.
type Bus interface {
	// Publish queues an event for async dispatch. It never blocks; when the
	// buffer is full the event is dropped and counted.
	Publish(e event.Event)

	// Subscribe registers a handler for all events and returns a
	// subscription ID for Unsubscribe.
	Subscribe(handler Handler) string

	// SubscribeSession registers a handler that only receives events
	// implementing SessionEvent with a matching session ID.
	SubscribeSession(sessionID string, handler Handler) string

	// Unsubscribe removes a subscription. Unknown IDs are ignored.
	Unsubscribe(id string)

	// Close drains queued events and stops dispatch. Publish becomes a
	// no-op afterwards.
	Close()
}
