package capture

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ironsheep/edgecam/internal/frame"
)

// Pattern is a synthetic source: a horizontal gradient with a bright square
// sweeping across it, so every frame has strong moving edges.
type Pattern struct {
	width, height int
	padding       int
	interval      time.Duration
}

// NewPattern returns a width x height pattern source emitting fps frames per
// second. padding adds that many junk bytes to the end of every row.
func NewPattern(width, height int, fps float64, padding int) (*Pattern, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid pattern size %dx%d", width, height)
	}
	if fps <= 0 {
		return nil, errors.Errorf("invalid pattern rate %v", fps)
	}
	if padding < 0 {
		return nil, errors.Errorf("invalid row padding %d", padding)
	}
	return &Pattern{
		width:    width,
		height:   height,
		padding:  padding,
		interval: time.Duration(float64(time.Second) / fps),
	}, nil
}

// Frame renders frame number n.
func (p *Pattern) Frame(n int, capturedAt time.Time) *frame.Buffer {
	stride := p.width + p.padding
	buf := make([]byte, stride*p.height)

	side := p.height / 3
	if side < 1 {
		side = 1
	}
	span := p.width - side
	if span < 1 {
		span = 1
	}
	left := (n * 4) % span
	top := (p.height - side) / 2

	for y := 0; y < p.height; y++ {
		row := buf[y*stride : (y+1)*stride]
		for x := 0; x < p.width; x++ {
			v := byte(32 + x*96/p.width)
			if x >= left && x < left+side && y >= top && y < top+side {
				v = 240
			}
			row[x] = v
		}
		for x := p.width; x < stride; x++ {
			row[x] = 0xFF
		}
	}

	return &frame.Buffer{
		Bytes:       buf,
		Width:       p.width,
		Height:      p.height,
		RowStride:   stride,
		PixelStride: 1,
		CapturedAt:  capturedAt,
	}
}

// Run emits frames on a ticker until ctx is cancelled.
func (p *Pattern) Run(ctx context.Context, h Handler) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			h(p.Frame(n, now))
		}
	}
}
