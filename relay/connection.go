// Package relay implements the WeeChat relay client's connection engine:
// framing, the outbound write queue, command/response correlation, and
// event dispatch, tied together behind a small async API.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mickamy/weechat-relay/frame"
	"github.com/mickamy/weechat-relay/metrics"
	"github.com/mickamy/weechat-relay/relayerr"
	"github.com/mickamy/weechat-relay/wire"
)

// State is one of the connection's four lifecycle states.
type State int

const (
	StateUnconnected State = iota
	StateHandshaking
	StateReady
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Connection is a single WeeChat relay session: one socket, one read loop,
// one write queue, and the pending-command/event-dispatch machinery layered
// over them. The zero value is not usable; construct with New.
type Connection struct {
	// ID identifies this connection instance for logging and for
	// downstream consumers (e.g. the tui/broker packages) that multiplex
	// more than one relay session.
	ID uuid.UUID

	stream   io.ReadWriteCloser
	reader   *frame.Reader
	writer   *writeQueue
	registry *registry
	disp     *dispatcher

	password []byte
	metrics  *metrics.Collector

	mu    sync.Mutex
	state State

	teardownOnce sync.Once
	done         chan struct{}
}

// New constructs a Connection over an already-established byte stream
// (typically a net.Conn or TLS-wrapped net.Conn; socket establishment and
// TLS negotiation are the caller's responsibility). The connection begins
// in StateUnconnected and does nothing until Init is called.
func New(stream io.ReadWriteCloser) *Connection {
	c := &Connection{
		ID:       uuid.New(),
		stream:   stream,
		reader:   frame.NewReader(stream),
		writer:   newWriteQueue(),
		registry: newRegistry(),
		disp:     newDispatcher(),
		done:     make(chan struct{}),
	}
	c.disp.register("_pong", handlePong)
	return c
}

// SetPassword stores the relay password, which appears on the wire only
// inside the init command. The backing buffer is memory-locked on a
// best-effort basis so the OS avoids paging it to disk.
func (c *Connection) SetPassword(password string) {
	c.password = []byte(password)
	lockPassword(c.password)
}

// RegisterEventHandler installs h for server-push identifier eventID,
// replacing any previously registered handler. Unknown identifiers may be
// registered too; they simply never fire, since dispatch routes unknown
// identifiers to the command registry instead.
func (c *Connection) RegisterEventHandler(eventID string, h EventHandler) {
	c.disp.register(eventID, h)
}

// State reports the connection's current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connection) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Init drives Unconnected -> Handshaking -> Ready: it starts the read loop,
// enqueues the init command (with password, if set), enqueues a ping to
// mark the end of the handshake, and waits for that ping's reply. It
// resolves ok once the ping round-trips, or with an error if the handshake
// fails before then.
func (c *Connection) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUnconnected {
		c.mu.Unlock()
		return fmt.Errorf("relay: init called in state %s, want %s", c.state, StateUnconnected)
	}
	c.state = StateHandshaking
	c.mu.Unlock()

	go c.readLoop()

	initLine := buildInit(string(c.password))
	if wasEmpty := c.writer.enqueue(ctx, initLine); wasEmpty {
		go c.runWriteLoop()
	}

	_, err := c.ping(ctx, "")
	if err != nil {
		c.terminal(fmt.Errorf("relay: handshake ping: %w", err))
		return err
	}

	c.setState(StateReady)
	return nil
}

// Ping sends a ping command and returns the echoed text (empty if none was
// given), completing when the matching _pong arrives.
func (c *Connection) Ping(ctx context.Context, text string) (string, error) {
	if c.State() == StateTerminated {
		return "", relayerr.ErrCancelled
	}
	return c.ping(ctx, text)
}

func (c *Connection) ping(ctx context.Context, text string) (string, error) {
	p := c.registry.register()
	c.updatePending()
	defer c.updatePending()
	start := time.Now()
	line := buildPing(p.id, text)

	if wasEmpty := c.writer.enqueue(ctx, line); wasEmpty {
		go c.runWriteLoop()
	}

	select {
	case res := <-p.result:
		if res.err != nil {
			return "", res.err
		}
		c.recordLatency(time.Since(start))
		return res.text, nil
	case <-ctx.Done():
		c.registry.remove(p.id)
		return "", fmt.Errorf("relay: ping: %w", relayerr.ErrCancelled)
	case <-c.done:
		return "", relayerr.ErrCancelled
	}
}

// Close tears the connection down. It is idempotent: calling Close on an
// already-Terminated connection is a no-op.
func (c *Connection) Close() error {
	c.terminal(nil)
	return nil
}

// runWriteLoop drains the write queue onto the socket. A write error is
// fatal for the whole connection.
func (c *Connection) runWriteLoop() {
	if err := c.writer.drain(c.stream); err != nil {
		c.terminal(err)
	}
}

// readLoop is the connection's single logical reader: it pulls frames,
// decodes them, and dispatches the resulting messages until a fatal error
// or a clean shutdown-triggered EOF.
func (c *Connection) readLoop() {
	for {
		payload, err := c.reader.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) && c.State() == StateTerminated {
				return
			}
			c.terminal(fmt.Errorf("relay: read loop: %w", err))
			return
		}

		c.recordFrame(len(payload))

		msg, err := wire.Decode(payload)
		if err != nil {
			// Bounds/structural decode errors indicate desynchronization of
			// the byte stream, unlike a malformed individual event; they
			// are fatal for the connection.
			c.terminal(fmt.Errorf("relay: decode: %w", err))
			return
		}

		c.disp.dispatch(c, msg)
	}
}

// terminal transitions the connection to Terminated exactly once: it closes
// the stream, cancels every pending command, and drops the write queue.
// cause, if non-nil, is logged; it is not otherwise surfaced (pending
// waiters always resolve with relayerr.ErrCancelled, except the waiter whose
// own operation failed directly).
func (c *Connection) terminal(cause error) {
	c.teardownOnce.Do(func() {
		if cause != nil {
			log.Printf("relay: connection %s terminated: %v", c.ID, cause)
		}
		c.setState(StateTerminated)
		close(c.done)
		_ = c.stream.Close()
		c.registry.cancelAll(relayerr.ErrCancelled)
		c.writer.drop()
		unlockPassword(c.password)
		c.removeMetrics()
	})
}
