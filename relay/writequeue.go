package relay

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mickamy/weechat-relay/relayerr"
)

// writeEntry is one outbound command: an owned byte block and an optional
// cancellation context. An entry whose context is done before it reaches the
// head is skipped; one already in flight still completes its write.
type writeEntry struct {
	data []byte
	off  int
	ctx  context.Context
}

// writeQueue serializes outbound writes onto a single socket: at most one
// write is outstanding at a time, entries are dequeued strictly in FIFO
// order, and a short write is continued from the first unwritten byte
// before the next entry starts.
type writeQueue struct {
	mu      sync.Mutex
	entries []*writeEntry
	running bool
}

func newWriteQueue() *writeQueue {
	return &writeQueue{}
}

// enqueue appends data to the queue. It reports whether the caller is
// responsible for starting the drain loop: true the first time an entry
// lands on an idle queue, false whenever a drain loop is already running
// and will pick the new entry up itself. The "idle" check and the
// "mark running" transition happen under the same lock so that a drain
// loop finishing just as a new entry arrives can never race with this
// observation (see drain's matching check on exit).
func (q *writeQueue) enqueue(ctx context.Context, data []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, &writeEntry{data: data, ctx: ctx})
	if q.running {
		return false
	}
	q.running = true
	return true
}

// drain writes every queued entry to w in order, skipping entries cancelled
// before they reach the head and continuing short writes from the first
// unwritten byte. It returns on the first write error, which the caller
// must treat as fatal for the connection.
func (q *writeQueue) drain(w io.Writer) error {
	for {
		entry := q.peekHead()
		if entry == nil {
			return nil
		}

		if entry.ctx != nil && entry.ctx.Err() != nil {
			q.popHead()
			continue
		}

		for entry.off < len(entry.data) {
			n, err := w.Write(entry.data[entry.off:])
			entry.off += n
			if err != nil {
				q.popHead()
				q.stop()
				return fmt.Errorf("relay: write queue: %w: %v", relayerr.ErrIO, err)
			}
		}
		q.popHead()
	}
}

// peekHead returns the current head entry, or nil if the queue is empty —
// in which case it also clears the running flag in the same critical
// section, so a concurrent enqueue either observes "running" (and lets this
// drain loop pick its entry up, which it will, since it hasn't exited yet)
// or observes "not running" (and correctly starts a new loop).
func (q *writeQueue) peekHead() *writeEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		q.running = false
		return nil
	}
	return q.entries[0]
}

func (q *writeQueue) popHead() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return
	}
	q.entries = q.entries[1:]
}

func (q *writeQueue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.running = false
}

// drop empties the queue without writing anything further. Used during
// teardown.
func (q *writeQueue) drop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
	q.running = false
}
