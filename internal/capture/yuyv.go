package capture

import (
	"time"

	"github.com/ironsheep/edgecam/internal/frame"
)

// yuyvFrame copies a YUYV capture buffer into a luma frame. The row stride is
// taken from the buffer length so drivers that pad rows still line up.
func yuyvFrame(data []byte, width, height int, at time.Time) (*frame.Buffer, error) {
	stride := width * 2
	if height > 0 {
		if s := len(data) / height; s > stride {
			stride = s
		}
	}
	// the driver reuses its buffers
	buf := make([]byte, len(data))
	copy(buf, data)
	return frame.New(buf, width, height, stride, 2, at)
}
