package render

import (
	"fmt"
	"strings"

	"github.com/ironsheep/edgecam/internal/gpu"
	"github.com/ironsheep/edgecam/internal/orientation"
)

// ScaleMode selects how a frame is fitted to a surface of different aspect.
type ScaleMode int

const (
	// Fill covers the whole surface and crops the overflowing axis.
	Fill ScaleMode = iota
	// Fit shows the whole frame and letterboxes the remainder.
	Fit
)

func (m ScaleMode) String() string {
	if m == Fit {
		return "fit"
	}
	return "fill"
}

// ParseScaleMode accepts "fill" or "fit". The empty string means Fill.
func ParseScaleMode(s string) (ScaleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fill":
		return Fill, nil
	case "fit":
		return Fit, nil
	}
	return Fill, fmt.Errorf("unknown scale mode %q (want fill or fit)", s)
}

// AspectScale returns the x and y scale applied to the full-screen quad so a
// frameW x frameH image keeps its aspect ratio on a surfaceW x surfaceH
// surface. A rotation of 90 or 270 degrees swaps the frame axes first.
// Degenerate sizes yield (1, 1).
func AspectScale(mode ScaleMode, surfaceW, surfaceH, frameW, frameH, rotation int) (sx, sy float32) {
	if surfaceW <= 0 || surfaceH <= 0 || frameW <= 0 || frameH <= 0 {
		return 1, 1
	}
	if rotation%180 != 0 {
		frameW, frameH = frameH, frameW
	}
	fa := float32(frameW) / float32(frameH)
	sa := float32(surfaceW) / float32(surfaceH)

	wider := fa > sa
	if mode == Fit {
		if wider {
			return 1, sa / fa
		}
		return fa / sa, 1
	}
	if wider {
		return fa / sa, 1
	}
	return 1, sa / fa
}

// DrawTransform composes the quad transform: rotation about Z first, then
// the horizontal mirror, then the vertical mirror, then the aspect scale.
func DrawTransform(t orientation.Transform, sx, sy float32) gpu.Mat4 {
	m := gpu.RotateZ(t.RotationDegrees)
	if t.MirrorX {
		m = gpu.Scale(-1, 1).Mul(m)
	}
	if t.MirrorY {
		m = gpu.Scale(1, -1).Mul(m)
	}
	return gpu.Scale(sx, sy).Mul(m)
}
