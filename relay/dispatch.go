package relay

import (
	"log"
	"strconv"
	"strings"

	"github.com/mickamy/weechat-relay/wire"
)

// EventHandler processes one decoded server-push message. Handlers run
// inline on the connection's read loop and must not block; a handler that
// needs to do real work should copy what it needs and hand off to its own
// goroutine.
type EventHandler func(conn *Connection, msg *wire.Message)

// knownEvents is the set of recognized server-push identifier strings. Any
// other leading identifier is interpreted as a command-correlation id
// rather than an event.
var knownEvents = map[string]bool{
	"_buffer_opened":           true,
	"_buffer_type_changed":     true,
	"_buffer_moved":            true,
	"_buffer_merged":           true,
	"_buffer_unmerged":         true,
	"_buffer_hidden":           true,
	"_buffer_unhidden":         true,
	"_buffer_renamed":          true,
	"_buffer_title_changed":    true,
	"_buffer_localvar_added":   true,
	"_buffer_localvar_changed": true,
	"_buffer_localvar_removed": true,
	"_buffer_closing":          true,
	"_buffer_cleared":          true,
	"_buffer_line_added":       true,
	"_nicklist":                true,
	"_nicklist_diff":           true,
	"_pong":                    true,
	"_upgrade":                 true,
	"_upgrade_ended":           true,
}

// dispatcher routes a decoded Message either to its registered event
// handler or, for an unrecognized identifier, to the command registry as a
// reply to a pending command.
type dispatcher struct {
	handlers map[string]EventHandler
	flood    *floodDetector

	// onFlood, if set, is notified whenever flood.record fires an alert, in
	// addition to the unconditional log line. Used to feed the metrics
	// package without this package importing it.
	onFlood func(eventID string, count int)
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		handlers: make(map[string]EventHandler),
		flood:    newFloodDetector(),
	}
}

func (d *dispatcher) register(eventID string, h EventHandler) {
	d.handlers[eventID] = h
}

// KnownEventIDs returns every server-push identifier this package
// recognizes, e.g. for a caller that wants to register the same handler for
// all of them rather than enumerate each one by name.
func KnownEventIDs() []string {
	ids := make([]string, 0, len(knownEvents))
	for id := range knownEvents {
		ids = append(ids, id)
	}
	return ids
}

// dispatch routes msg. Errors raised from within a handler are logged and
// swallowed: a malformed or noisy event must never tear down an otherwise
// healthy connection. Bounds/structural decode errors are handled upstream,
// before dispatch is ever reached, because those indicate desynchronization
// of the byte stream rather than an application-level event problem.
func (d *dispatcher) dispatch(conn *Connection, msg *wire.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("relay: event handler panicked: %v", r)
		}
	}()

	if !msg.HasIdentifier {
		log.Printf("relay: message with no identifier and %d values dropped", len(msg.Values))
		return
	}

	if knownEvents[msg.Identifier] {
		if alert := d.flood.record(msg); alert != nil {
			log.Printf("relay: burst of %q events: %d in window", alert.EventID, alert.Count)
			if d.onFlood != nil {
				d.onFlood(alert.EventID, alert.Count)
			}
		}
		h, ok := d.handlers[msg.Identifier]
		if !ok {
			return
		}
		h(conn, msg)
		return
	}

	d.dispatchCommandReply(conn, msg)
}

// dispatchCommandReply parses msg.Identifier as a lowercase hex command id
// and resolves the matching pending waiter, if any. A reply for an id with
// no pending waiter (a stale reply) is logged and discarded, not fatal.
func (d *dispatcher) dispatchCommandReply(conn *Connection, msg *wire.Message) {
	id, err := strconv.ParseUint(msg.Identifier, 16, 32)
	if err != nil {
		log.Printf("relay: unrecognized identifier %q is neither a known event nor a hex id: %v", msg.Identifier, err)
		return
	}

	if !conn.registry.resolve(uint32(id), commandResult{msg: msg}) {
		log.Printf("relay: reply for unknown command id %x discarded", id)
	}
	conn.updatePending()
}

// handlePong is the mandatory handler for "_pong". Its payload is a single
// str value of the form "<hex-id>" or "<hex-id> <text>": the hex id
// identifies the originating ping, the optional text is the ping's result.
func handlePong(conn *Connection, msg *wire.Message) {
	if len(msg.Values) != 1 {
		log.Printf("relay: _pong with %d values, want 1", len(msg.Values))
		return
	}
	s, ok := msg.Values[0].(wire.String)
	if !ok || s.Null {
		log.Printf("relay: _pong payload is not a present str value")
		return
	}

	body := string(s.Data)
	hexID, text, _ := strings.Cut(body, " ")
	id, err := strconv.ParseUint(hexID, 16, 32)
	if err != nil {
		log.Printf("relay: _pong with malformed id %q: %v", hexID, err)
		return
	}

	if !conn.registry.resolve(uint32(id), commandResult{text: text}) {
		log.Printf("relay: _pong for unknown ping id %x discarded", id)
	}
	conn.updatePending()
}
