package pipeline

import (
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultTargetFPS is the processing rate the governor admits by default.
const DefaultTargetFPS = 15

// Governor gates frames into the processing mailbox at a target rate.
//
// The minimum interval is computed in whole milliseconds (1000/targetFPS,
// truncated), so 15 fps admits one frame every 66 ms.
type Governor struct {
	targetFPS    float64
	minInterval  time.Duration
	lastAccepted atomic.Int64 // unix nanos; 0 = never
}

// NewGovernor returns a governor for targetFPS (> 0).
func NewGovernor(targetFPS float64) (*Governor, error) {
	if targetFPS <= 0 || targetFPS > 1000 {
		return nil, fmt.Errorf("target fps must be in (0, 1000], got %v", targetFPS)
	}
	return &Governor{
		targetFPS:   targetFPS,
		minInterval: time.Duration(int64(1000/targetFPS)) * time.Millisecond,
	}, nil
}

// MinInterval returns the spacing enforced between admitted frames.
func (g *Governor) MinInterval() time.Duration {
	return g.minInterval
}

// TargetFPS returns the configured rate.
func (g *Governor) TargetFPS() float64 {
	return g.targetFPS
}

// Admit reports whether a frame captured at now may enter the mailbox, and
// records now as the last acceptance when it does.
//
// Admit is called from the capture context only; the atomic keeps concurrent
// Stats readers race-free.
func (g *Governor) Admit(now time.Time) bool {
	last := g.lastAccepted.Load()
	if last != 0 && now.UnixNano()-last < int64(g.minInterval) {
		return false
	}
	g.lastAccepted.Store(now.UnixNano())
	return true
}

// Remaining returns how much of the interval is left after a cycle that
// started at start and ended at now.
func (g *Governor) Remaining(start, now time.Time) time.Duration {
	left := g.minInterval - now.Sub(start)
	if left < 0 {
		return 0
	}
	return left
}
