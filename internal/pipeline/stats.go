package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Counters are the monotonically increasing frame counters behind the FPS
// overlay. They are reset independently by the Sampler.
type Counters struct {
	captured  atomic.Uint64
	processed atomic.Uint64
}

// Rates is one FPS sample.
type Rates struct {
	CameraFPS     float64   `json:"cameraFps"`
	ProcessingFPS float64   `json:"processingFps"`
	SampledAt     time.Time `json:"sampledAt"`
}

// String renders the overlay text.
func (r Rates) String() string {
	return fmt.Sprintf("Cam FPS: %.1f | Proc FPS: %.1f", r.CameraFPS, r.ProcessingFPS)
}

// Sampler turns the counters into rates on a fixed cadence.
//
// The counters are swapped to zero once at least window has elapsed since the
// previous sample; checks run every period.
type Sampler struct {
	counters *Counters
	period   time.Duration
	window   time.Duration
	latest   atomic.Pointer[Rates]
	last     time.Time
}

// NewSampler checks every period and publishes a sample per window.
func NewSampler(c *Counters, period, window time.Duration) *Sampler {
	s := &Sampler{counters: c, period: period, window: window}
	s.latest.Store(&Rates{})
	return s
}

// Run samples until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) {
	s.last = time.Now()
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.sample(now)
		}
	}
}

func (s *Sampler) sample(now time.Time) {
	elapsed := now.Sub(s.last)
	if elapsed < s.window {
		return
	}
	secs := elapsed.Seconds()
	r := Rates{
		CameraFPS:     float64(s.counters.captured.Swap(0)) / secs,
		ProcessingFPS: float64(s.counters.processed.Swap(0)) / secs,
		SampledAt:     now,
	}
	s.latest.Store(&r)
	s.last = now
}

// Latest returns the most recent sample.
func (s *Sampler) Latest() Rates {
	return *s.latest.Load()
}
