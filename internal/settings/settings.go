// Package settings holds the runtime-tunable edge detection parameters.
//
// Settings are replaced as whole values through an atomic pointer, so readers
// never observe a low threshold from one update paired with a high threshold
// from another. There is no ordering guarantee relative to frames already in
// flight: a frame dequeued before Apply may still use the previous thresholds.
package settings

import (
	"fmt"
	"sync/atomic"
)

// Default Canny thresholds.
const (
	DefaultLowThreshold  = 50
	DefaultHighThreshold = 150
)

// Settings is one complete parameter set.
type Settings struct {
	LowThreshold  int  `json:"lowThreshold"`
	HighThreshold int  `json:"highThreshold"`
	EdgesEnabled  bool `json:"edgesEnabled"`
}

// Defaults returns the startup parameter set.
func Defaults() Settings {
	return Settings{
		LowThreshold:  DefaultLowThreshold,
		HighThreshold: DefaultHighThreshold,
		EdgesEnabled:  true,
	}
}

// Validate checks that both thresholds are 8-bit gradient magnitudes.
func (s Settings) Validate() error {
	if s.LowThreshold < 0 || s.LowThreshold > 255 {
		return fmt.Errorf("lowThreshold %d outside [0,255]", s.LowThreshold)
	}
	if s.HighThreshold < 0 || s.HighThreshold > 255 {
		return fmt.Errorf("highThreshold %d outside [0,255]", s.HighThreshold)
	}
	return nil
}

// Channel publishes the current Settings to the governor, worker and surface.
type Channel struct {
	current   atomic.Pointer[Settings]
	observers atomic.Pointer[[]func(Settings)]
}

// NewChannel returns a channel seeded with initial.
func NewChannel(initial Settings) *Channel {
	c := &Channel{}
	c.current.Store(&initial)
	return c
}

// Current returns the latest applied settings.
func (c *Channel) Current() Settings {
	return *c.current.Load()
}

// Enabled is a shortcut for Current().EdgesEnabled.
func (c *Channel) Enabled() bool {
	return c.current.Load().EdgesEnabled
}

// Thresholds returns the low/high pair from a single snapshot.
func (c *Channel) Thresholds() (low, high int) {
	s := c.current.Load()
	return s.LowThreshold, s.HighThreshold
}

// Subscribe registers fn to be called with every applied value, and once
// immediately with the current one.
func (c *Channel) Subscribe(fn func(Settings)) {
	for {
		old := c.observers.Load()
		var next []func(Settings)
		if old != nil {
			next = append(next, *old...)
		}
		next = append(next, fn)
		if c.observers.CompareAndSwap(old, &next) {
			break
		}
	}
	fn(c.Current())
}

// Apply validates and atomically replaces the settings. Last writer wins.
func (c *Channel) Apply(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.current.Store(&s)

	if obs := c.observers.Load(); obs != nil {
		for _, fn := range *obs {
			fn(s)
		}
	}
	return nil
}
