//go:build linux

package capture

import (
	"context"
	"time"

	"github.com/blackjack/webcam"
	"github.com/pkg/errors"
	"go.uber.org/zap"

)

// pixelFormatYUYV is the V4L2 fourcc 'YUYV'. Luma sits in every second byte.
const pixelFormatYUYV = webcam.PixelFormat('Y' | 'U'<<8 | 'Y'<<16 | 'V'<<24)

// Webcam captures YUYV frames from a V4L2 device.
type Webcam struct {
	device        string
	width, height int
	fps           float64
	log           *zap.Logger
}

// NewWebcam returns a source for device. The device is opened by Run.
// A positive fps is requested from the driver.
func NewWebcam(device string, width, height int, fps float64, log *zap.Logger) (*Webcam, error) {
	if device == "" {
		return nil, errors.New("webcam source needs a device path")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid webcam size %dx%d", width, height)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Webcam{device: device, width: width, height: height, fps: fps, log: log}, nil
}

// Run opens the device, streams until ctx is cancelled and closes it again.
func (w *Webcam) Run(ctx context.Context, h Handler) error {
	cam, err := webcam.Open(w.device)
	if err != nil {
		return errors.Wrap(err, "can not open device")
	}
	defer cam.Close()

	format, width, height, err := cam.SetImageFormat(pixelFormatYUYV, uint32(w.width), uint32(w.height))
	if err != nil {
		return errors.Wrap(err, "can not set image format")
	}
	if format != pixelFormatYUYV {
		return errors.Errorf("device %s does not deliver YUYV", w.device)
	}
	if w.fps > 0 {
		// not every driver supports frame intervals
		if err := cam.SetFramerate(float32(w.fps)); err != nil {
			w.log.Warn("can not set frame rate", zap.Float64("fps", w.fps), zap.Error(err))
		}
	}
	w.log.Info("webcam opened",
		zap.String("device", w.device),
		zap.Uint32("width", width),
		zap.Uint32("height", height))

	if err := cam.StartStreaming(); err != nil {
		return errors.Wrap(err, "can not start streaming")
	}
	defer func() {
		if err := cam.StopStreaming(); err != nil {
			w.log.Warn("stop streaming failed", zap.Error(err))
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		err = cam.WaitForFrame(1)
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			continue
		default:
			return errors.Wrap(err, "frame wait failed")
		}

		data, err := cam.ReadFrame()
		if err != nil {
			return errors.Wrap(err, "read frame failed")
		}
		if len(data) == 0 {
			continue
		}

		f, err := yuyvFrame(data, int(width), int(height), time.Now())
		if err != nil {
			w.log.Debug("dropping short frame", zap.Error(err))
			continue
		}
		h(f)
	}
}
