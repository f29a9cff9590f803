// Package event provides the in-process publish/subscribe bus.
//
// The bus is the only channel between components: the typing engine, the
// look-down detector, the penalty manager, and the progress layer never hold
// references to each other, only to a shared Bus instance.
package event

import (
	"fmt"
	"os"
	"sync"
)

// Handler receives the payload published with Emit.
type Handler func(payload any)

type subscriber struct {
	id      uint64
	handler Handler
	once    bool
}

// Bus dispatches named events to subscribers synchronously, in registration
// order. A handler that panics is recovered and logged without affecting
// sibling handlers or the emitter.
type Bus struct {
	mu     sync.Mutex
	subs   map[Topic][]*subscriber
	nextID uint64
	logf   func(format string, args ...any)
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger replaces the default stderr logger used for handler failures.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(b *Bus) {
		if logf != nil {
			b.logf = logf
		}
	}
}

// NewBus returns an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subs: map[Topic][]*subscriber{},
		logf: func(format string, args ...any) {
			if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
				// Best-effort logging to stderr.
				_ = err
			}
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On registers a handler for the topic and returns an unsubscribe function.
// Unsubscribing twice is a no-op.
func (b *Bus) On(topic Topic, handler Handler) func() {
	return b.subscribe(topic, handler, false)
}

// Once registers a handler that is removed after its first invocation.
func (b *Bus) Once(topic Topic, handler Handler) func() {
	return b.subscribe(topic, handler, true)
}

func (b *Bus) subscribe(topic Topic, handler Handler, once bool) func() {
	if handler == nil {
		return func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &subscriber{id: b.nextID, handler: handler, once: once}
	b.subs[topic] = append(b.subs[topic], sub)
	id := sub.id
	return func() {
		b.remove(topic, id)
	}
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, sub := range subs {
		if sub.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit invokes all current subscribers for the topic on the calling
// goroutine, in registration order. Every handler observes the same payload.
func (b *Bus) Emit(topic Topic, payload any) {
	b.mu.Lock()
	subs := b.subs[topic]
	snapshot := make([]*subscriber, len(subs))
	copy(snapshot, subs)
	b.mu.Unlock()

	for _, sub := range snapshot {
		if sub.once {
			// Remove before invoking so a handler emitting the same
			// topic cannot re-enter itself.
			b.remove(topic, sub.id)
		}
		b.invoke(topic, sub, payload)
	}
}

func (b *Bus) invoke(topic Topic, sub *subscriber, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logf("event: handler for %q panicked: %v\n", string(topic), r)
		}
	}()
	sub.handler(payload)
}

// Off removes all subscribers for the topic.
func (b *Bus) Off(topic Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, topic)
}

// RemoveAllListeners removes every subscriber on the bus.
func (b *Bus) RemoveAllListeners() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = map[Topic][]*subscriber{}
}

// ListenerCount reports the number of subscribers for the topic.
func (b *Bus) ListenerCount(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}
