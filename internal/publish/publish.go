// Package publish holds the latest processed frame and pipeline status for
// the network surface.
//
// The worker is the only writer; any number of HTTP handlers read. Both the
// encoded frame and the status are replaced as whole values through atomic
// pointers, so readers never see a half-written value and never take a lock.
package publish

import (
	"sync/atomic"
)

// State is the coarse pipeline state reported to viewers.
type State int

const (
	Idle State = iota
	Running
	Failed
)

// Status is the value reported by GET /status.
type Status struct {
	State   State
	Message string
}

// IdleStatus is the status before any frame has been processed.
var IdleStatus = Status{State: Idle}

// RunningStatus is the status after a successful processing cycle.
var RunningStatus = Status{State: Running}

// ErrorStatus builds a failure status carrying msg.
func ErrorStatus(msg string) Status {
	return Status{State: Failed, Message: msg}
}

// String renders the wire form: "idle", "running" or "error: <msg>".
func (s Status) String() string {
	switch s.State {
	case Running:
		return "running"
	case Failed:
		return "error: " + s.Message
	default:
		return "idle"
	}
}

// Publisher is the lock-free holder of the latest JPEG and status.
type Publisher struct {
	frame   atomic.Pointer[[]byte]
	status  atomic.Pointer[Status]
	version atomic.Uint64
}

// New returns a publisher in the Idle state with no frame.
func New() *Publisher {
	p := &Publisher{}
	p.Reset()
	return p
}

// Reset clears the frame and sets the status back to Idle.
func (p *Publisher) Reset() {
	p.frame.Store(nil)
	s := IdleStatus
	p.status.Store(&s)
}

// SetFrame replaces the latest encoded frame. The slice must not be modified
// afterwards.
func (p *Publisher) SetFrame(jpeg []byte) {
	if jpeg == nil {
		return
	}
	p.frame.Store(&jpeg)
	p.version.Add(1)
}

// Frame returns the latest encoded frame, or false if none was published yet.
func (p *Publisher) Frame() ([]byte, bool) {
	f := p.frame.Load()
	if f == nil {
		return nil, false
	}
	return *f, true
}

// SetStatus replaces the status.
func (p *Publisher) SetStatus(s Status) {
	p.status.Store(&s)
}

// Status returns the latest status.
func (p *Publisher) Status() Status {
	return *p.status.Load()
}

// Version increments on every SetFrame; streamers compare it to detect a new
// frame without copying bytes.
func (p *Publisher) Version() uint64 {
	return p.version.Load()
}
