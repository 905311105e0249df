package capture

import (
	"context"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/edgecam/internal/frame"
)

// Still replays decoded image files as a looping frame sequence.
//
// All images are decoded and converted to luma when the source is built, so
// Run never touches the disk. Supported formats are PNG, JPEG, and GIF.
type Still struct {
	frames   []*frame.Buffer
	interval time.Duration
}

// NewStill loads every file matched by patterns. Each pattern may be a plain
// path or a filepath.Match glob. When width is positive, images are resized
// to that width keeping their aspect ratio.
func NewStill(patterns []string, width int, fps float64, log *zap.Logger) (*Still, error) {
	if fps <= 0 {
		return nil, errors.Errorf("invalid still rate %v", fps)
	}
	if log == nil {
		log = zap.NewNop()
	}
	paths, err := expand(patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("still source needs at least one image file")
	}

	s := &Still{interval: time.Duration(float64(time.Second) / fps)}
	for _, path := range paths {
		f, err := LoadLuma(path, width)
		if err != nil {
			return nil, err
		}
		log.Debug("loaded still image",
			zap.String("path", path),
			zap.Int("width", f.Width),
			zap.Int("height", f.Height))
		s.frames = append(s.frames, f)
	}
	return s, nil
}

func expand(patterns []string) ([]string, error) {
	var paths []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, errors.Wrapf(err, "bad file pattern %q", p)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no files match %q", p)
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	return paths, nil
}

// LoadLuma decodes an image file and returns its luma plane.
func LoadLuma(path string, width int) (*frame.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode image %s", path)
	}
	if width > 0 && img.Bounds().Dx() != width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	return Luma(img, time.Time{}), nil
}

// Luma converts img to a packed luma frame.
func Luma(img image.Image, capturedAt time.Time) *frame.Buffer {
	gray := imaging.Grayscale(img)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			pix[y*w+x] = row[x*4]
		}
	}
	return frame.NewGray(pix, w, h, capturedAt)
}

// Len returns the number of loaded images.
func (s *Still) Len() int {
	return len(s.frames)
}

// Run cycles through the loaded images until ctx is cancelled. Every delivery
// is a fresh copy.
func (s *Still) Run(ctx context.Context, h Handler) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			f := s.frames[i%len(s.frames)].Clone()
			f.CapturedAt = now
			h(f)
		}
	}
}
