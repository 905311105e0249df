package render

import (
	"context"
	"fmt"
	"time"
)

// DefaultFPS is the render loop tick rate.
const DefaultFPS = 30

// Run ticks the surface at fps until ctx is cancelled.
func (s *Surface) Run(ctx context.Context, fps float64) error {
	if fps <= 0 {
		return fmt.Errorf("invalid render rate %v", fps)
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}
