// Package orientation maps camera sensor and display state to the rotation
// and mirroring the presentation surface must apply.
package orientation

import (
	"fmt"
	"strings"
)

// LensFacing identifies which way the camera lens points.
type LensFacing int

const (
	LensExternal LensFacing = iota
	LensFront
	LensBack
)

func (l LensFacing) String() string {
	switch l {
	case LensFront:
		return "front"
	case LensBack:
		return "back"
	default:
		return "external"
	}
}

// ParseLensFacing accepts "front", "back" or "external" (case-insensitive).
func ParseLensFacing(s string) (LensFacing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "front":
		return LensFront, nil
	case "back", "rear":
		return LensBack, nil
	case "external", "":
		return LensExternal, nil
	}
	return LensExternal, fmt.Errorf("unknown lens facing %q", s)
}

// DisplayRotation is one of the four canonical display rotation states.
type DisplayRotation int

const (
	Rotation0 DisplayRotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// Degrees maps the rotation state to {0, 90, 180, 270}.
func (r DisplayRotation) Degrees() int {
	switch r {
	case Rotation90:
		return 90
	case Rotation180:
		return 180
	case Rotation270:
		return 270
	default:
		return 0
	}
}

// DisplayRotationFromDegrees converts 0/90/180/270 into a DisplayRotation.
func DisplayRotationFromDegrees(deg int) (DisplayRotation, error) {
	switch normalize(deg) {
	case 0:
		return Rotation0, nil
	case 90:
		return Rotation90, nil
	case 180:
		return Rotation180, nil
	case 270:
		return Rotation270, nil
	}
	return Rotation0, fmt.Errorf("display rotation must be a multiple of 90, got %d", deg)
}

// Transform is the geometric correction applied when drawing a frame.
type Transform struct {
	RotationDegrees int  `json:"rotationDegrees"`
	MirrorX         bool `json:"mirrorX"`
	MirrorY         bool `json:"mirrorY"`
}

// Resolve computes the draw transform for a sensor mounted at
// sensorOrientation degrees.
//
// Front lenses add the display rotation and mirror horizontally (selfie
// view). Back lenses subtract it and mirror vertically, which corrects the
// sensor mount convention that otherwise renders upside down. External
// lenses rotate like back lenses without mirroring.
func Resolve(sensorOrientation int, facing LensFacing, display DisplayRotation) Transform {
	sensor := normalize(sensorOrientation)
	deg := display.Degrees()

	switch facing {
	case LensFront:
		return Transform{
			RotationDegrees: (sensor + deg) % 360,
			MirrorX:         true,
		}
	case LensBack:
		return Transform{
			RotationDegrees: (sensor - deg + 360) % 360,
			MirrorY:         true,
		}
	default:
		return Transform{
			RotationDegrees: (sensor - deg + 360) % 360,
		}
	}
}

// normalize folds any angle into [0, 360).
func normalize(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
