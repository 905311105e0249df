// Package capture provides the frame sources feeding the pipeline.
//
// Every source pushes freshly allocated luma frames to a Handler from its own
// goroutine. A frame handed to the Handler is never touched by the source
// again.
package capture

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/edgecam/internal/frame"
)

// Handler receives captured frames. It is called from the source goroutine
// and must return quickly.
type Handler func(f *frame.Buffer)

// Source produces frames until its context is cancelled.
type Source interface {
	// Run blocks delivering frames to h. It returns nil when ctx is
	// cancelled and an error when the source fails.
	Run(ctx context.Context, h Handler) error
}

// Source kinds accepted by Open.
const (
	KindWebcam  = "webcam"
	KindPattern = "pattern"
	KindStill   = "still"
)

// Config selects and tunes a source.
type Config struct {
	Source string   `yaml:"source"`
	Device string   `yaml:"device"`
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
	FPS    float64  `yaml:"fps"`
	Files  []string `yaml:"files"`
}

// Open builds the source named by cfg.Source.
func Open(cfg Config, log *zap.Logger) (Source, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var (
		src Source
		err error
	)
	switch strings.ToLower(cfg.Source) {
	case KindWebcam:
		var w *Webcam
		if w, err = NewWebcam(cfg.Device, cfg.Width, cfg.Height, cfg.FPS, log); err == nil {
			src = w
		}
	case KindPattern, "":
		var p *Pattern
		if p, err = NewPattern(cfg.Width, cfg.Height, cfg.FPS, 0); err == nil {
			src = p
		}
	case KindStill:
		var s *Still
		if s, err = NewStill(cfg.Files, cfg.Width, cfg.FPS, log); err == nil {
			src = s
		}
	default:
		err = errors.Errorf("unknown capture source %q", cfg.Source)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s source", cfg.Source)
	}
	return src, nil
}
