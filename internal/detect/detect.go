package detect

import (
	"errors"

	"github.com/ironsheep/edgecam/internal/frame"
)

// ErrUnavailable is returned by detectors that cannot run at all, for example
// when a native backend failed to load.
var ErrUnavailable = errors.New("edge detector unavailable")

// Detector turns a luma plane into an edge map of the same dimensions.
//
// Implementations must honor RowStride and PixelStride of the input and return
// a tightly packed plane (RowStride == Width, PixelStride == 1). They may fail;
// callers treat a failure as a per-frame condition, never as fatal.
type Detector interface {
	Detect(f *frame.Buffer, low, high int) (*frame.Buffer, error)
}

// Func adapts an ordinary function to the Detector interface.
type Func func(f *frame.Buffer, low, high int) (*frame.Buffer, error)

// Detect calls fn(f, low, high).
func (fn Func) Detect(f *frame.Buffer, low, high int) (*frame.Buffer, error) {
	return fn(f, low, high)
}
