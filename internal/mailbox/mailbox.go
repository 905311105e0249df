// Package mailbox implements the single-slot, drop-oldest queue that decouples
// capture rate from processing rate.
//
// The mailbox never holds more than one frame. Offer evicts whatever is still
// waiting and inserts the newcomer; it never blocks. Take blocks until a frame
// arrives, the context is cancelled, or the mailbox is closed.
package mailbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ironsheep/edgecam/internal/frame"
)

// ErrClosed is returned by Take once the mailbox has been closed.
var ErrClosed = errors.New("mailbox closed")

// Stats is a point-in-time snapshot of the mailbox counters.
type Stats struct {
	Offered uint64 `json:"offered"`
	Evicted uint64 `json:"evicted"`
	Dropped uint64 `json:"dropped"`
	Taken   uint64 `json:"taken"`
}

// Mailbox is a capacity-1 channel with overwrite semantics.
type Mailbox struct {
	slot      chan *frame.Buffer
	done      chan struct{}
	closeOnce sync.Once

	offered atomic.Uint64
	evicted atomic.Uint64
	dropped atomic.Uint64
	taken   atomic.Uint64
}

// New returns an empty, open mailbox.
func New() *Mailbox {
	return &Mailbox{
		slot: make(chan *frame.Buffer, 1),
		done: make(chan struct{}),
	}
}

// Offer evicts any unconsumed frame and inserts f without blocking.
//
// It reports whether f was inserted. A false return means a concurrent
// producer won the slot or the mailbox is closed; the frame is dropped and
// only the counters record it.
func (m *Mailbox) Offer(f *frame.Buffer) bool {
	m.offered.Add(1)

	select {
	case <-m.done:
		m.dropped.Add(1)
		return false
	default:
	}

	select {
	case <-m.slot:
		m.evicted.Add(1)
	default:
	}

	select {
	case m.slot <- f:
		return true
	default:
		m.dropped.Add(1)
		return false
	}
}

// Take blocks until a frame is available.
func (m *Mailbox) Take(ctx context.Context) (*frame.Buffer, error) {
	select {
	case f := <-m.slot:
		m.taken.Add(1)
		return f, nil
	case <-m.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Drain discards the pending frame, if any, and reports whether one was there.
func (m *Mailbox) Drain() bool {
	select {
	case <-m.slot:
		m.evicted.Add(1)
		return true
	default:
		return false
	}
}

// Len returns 0 or 1.
func (m *Mailbox) Len() int {
	return len(m.slot)
}

// Close drains the mailbox and releases any blocked Take. Idempotent.
func (m *Mailbox) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.Drain()
	})
}

// Stats returns the current counters.
func (m *Mailbox) Stats() Stats {
	return Stats{
		Offered: m.offered.Load(),
		Evicted: m.evicted.Load(),
		Dropped: m.dropped.Load(),
		Taken:   m.taken.Load(),
	}
}
