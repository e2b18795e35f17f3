// Package broker fans decoded relay messages out to any number of
// independent in-process consumers (the TUI, the web SSE endpoint) from a
// single relay.Connection event handler.
package broker

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mickamy/weechat-relay/wire"
)

// Broker is a mutex-guarded map of subscribers, the same shape as the
// detector's window maps elsewhere in this codebase: simple, one lock, no
// lock-free cleverness.
type Broker struct {
	mu   sync.Mutex
	subs map[uuid.UUID]chan *wire.Message
}

// New returns an empty Broker.
func New() *Broker {
	return &Broker{subs: make(map[uuid.UUID]chan *wire.Message)}
}

// Subscribe registers a new consumer and returns its id (for Unsubscribe)
// and a channel of messages published after this call. The channel is
// buffered so that Publish never blocks on a slow consumer; a consumer that
// falls behind silently drops messages rather than stalling the broker.
func (b *Broker) Subscribe(buffer int) (uuid.UUID, <-chan *wire.Message) {
	if buffer <= 0 {
		buffer = 64
	}
	id := uuid.New()
	ch := make(chan *wire.Message, buffer)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	return id, ch
}

// Unsubscribe removes a consumer and closes its channel. Unsubscribing an
// unknown id is a no-op.
func (b *Broker) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()

	if ok {
		close(ch)
	}
}

// Publish fans msg out to every current subscriber. A subscriber whose
// buffer is full has the message dropped for it rather than blocking the
// others.
func (b *Broker) Publish(msg *wire.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Len reports the current subscriber count.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Handler returns a function that publishes every message it sees. It takes
// only the message, so it is not itself a relay.EventHandler (which also
// receives the connection); registering it with conn.RegisterEventHandler
// takes a closure that drops the connection argument. It can also be called
// directly from a catch-all dispatch point.
func (b *Broker) Handler() func(msg *wire.Message) {
	return b.Publish
}
