//go:build !linux

package capture

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Webcam is only available on linux.
type Webcam struct{}

// NewWebcam always fails outside linux.
func NewWebcam(device string, width, height int, fps float64, log *zap.Logger) (*Webcam, error) {
	return nil, errors.New("webcam capture requires linux (V4L2)")
}

// Run always fails outside linux.
func (w *Webcam) Run(ctx context.Context, h Handler) error {
	return errors.New("webcam capture requires linux (V4L2)")
}
