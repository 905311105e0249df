package render

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ironsheep/edgecam/internal/frame"
	"github.com/ironsheep/edgecam/internal/gpu"
	"github.com/ironsheep/edgecam/internal/orientation"
)

// State is the surface lifecycle state.
type State int32

const (
	// Created means the program and textures exist but no size is known.
	Created State = iota
	// Sized means a viewport is set and the next tick will render.
	Sized
	// Rendering means at least one tick ran at the current size.
	Rendering
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Sized:
		return "sized"
	case Rendering:
		return "rendering"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Options configure a Surface.
type Options struct {
	Mode ScaleMode

	// Overlay, when set, is called once per drawn frame and its result is
	// drawn in the top-left corner. An empty string draws nothing.
	Overlay func() string
}

// Stats counts render activity.
type Stats struct {
	Drawn          uint64 `json:"drawn"`
	Skipped        uint64 `json:"skipped"`
	Uploads        uint64 `json:"uploads"`
	UploadFailures uint64 `json:"uploadFailures"`
	DeviceErrors   uint64 `json:"deviceErrors"`
}

// slotPair is a ping-pong texture pair. The render loop reads tex[current];
// uploads go to tex[1-current].
type slotPair struct {
	name    string
	tex     [2]gpu.Texture
	size    [2]image.Point
	current int
	filled  bool
}

func (p *slotPair) frameSize() image.Point {
	return p.size[p.current]
}

type aspectKey struct {
	mode           ScaleMode
	surface, frame image.Point
	rotation       int
}

// Surface is the double-buffered presentation surface.
//
// UpdateRaw and UpdateProcessed may be called from any goroutine. Tick,
// and therefore every device call, must only run on one goroutine at a time.
type Surface struct {
	dev     gpu.Device
	log     *zap.Logger
	program gpu.Program
	mode    ScaleMode
	overlay func() string

	// mu guards the pending frames and both current indices.
	mu               sync.Mutex
	pendingRaw       *frame.Buffer
	pendingProcessed *frame.Buffer
	raw              slotPair
	processed        slotPair

	// render goroutine only
	scratch  []byte
	viewport image.Point
	aspect   aspectKey
	sx, sy   float32

	state         atomic.Int32
	requested     atomic.Pointer[image.Point]
	orient        atomic.Pointer[orientation.Transform]
	showProcessed atomic.Bool

	drawn          atomic.Uint64
	skipped        atomic.Uint64
	uploads        atomic.Uint64
	uploadFailures atomic.Uint64
	deviceErrors   atomic.Uint64
}

// NewSurface creates the shader program and the four textures on dev.
// Failure here is fatal to the surface.
func NewSurface(dev gpu.Device, log *zap.Logger, opts Options) (*Surface, error) {
	if dev == nil {
		return nil, fmt.Errorf("render: nil device")
	}
	if log == nil {
		log = zap.NewNop()
	}

	program, err := dev.CreateProgram(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("create shader program: %w", err)
	}

	s := &Surface{
		dev:       dev,
		log:       log,
		program:   program,
		mode:      opts.Mode,
		overlay:   opts.Overlay,
		raw:       slotPair{name: "raw"},
		processed: slotPair{name: "processed"},
		sx:        1,
		sy:        1,
	}
	for _, pair := range []*slotPair{&s.raw, &s.processed} {
		for i := range pair.tex {
			t, err := dev.CreateTexture()
			if err != nil {
				return nil, fmt.Errorf("create %s texture %d: %w", pair.name, i, err)
			}
			pair.tex[i] = t
		}
	}
	s.orient.Store(&orientation.Transform{})
	return s, nil
}

// State returns the lifecycle state.
func (s *Surface) State() State {
	return State(s.state.Load())
}

// Resize requests a new surface size. It takes effect on the next tick.
func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	s.requested.Store(&image.Point{X: width, Y: height})
	return nil
}

// SetOrientation replaces the rotation and mirror flags.
func (s *Surface) SetOrientation(t orientation.Transform) {
	s.orient.Store(&t)
}

// Orientation returns the current rotation and mirror flags.
func (s *Surface) Orientation() orientation.Transform {
	return *s.orient.Load()
}

// SetShowProcessed selects which stream is drawn.
func (s *Surface) SetShowProcessed(show bool) {
	s.showProcessed.Store(show)
}

// UpdateRaw hands a captured frame to the surface. It never blocks: when the
// update lock is contended the frame is dropped and false is returned.
func (s *Surface) UpdateRaw(f *frame.Buffer) bool {
	if f == nil {
		return false
	}
	if !s.mu.TryLock() {
		return false
	}
	s.pendingRaw = f
	s.mu.Unlock()
	return true
}

// UpdateProcessed hands a transformed frame to the surface.
func (s *Surface) UpdateProcessed(f *frame.Buffer) {
	if f == nil {
		return
	}
	s.mu.Lock()
	s.pendingProcessed = f
	s.mu.Unlock()
}

// Stats returns a snapshot of the render counters.
func (s *Surface) Stats() Stats {
	return Stats{
		Drawn:          s.drawn.Load(),
		Skipped:        s.skipped.Load(),
		Uploads:        s.uploads.Load(),
		UploadFailures: s.uploadFailures.Load(),
		DeviceErrors:   s.deviceErrors.Load(),
	}
}

// Tick runs one render pass: apply a pending resize, upload pending frames
// into the inactive slots, then draw the selected stream and present.
func (s *Surface) Tick() {
	s.applyResize()
	if s.State() == Created {
		return
	}

	s.mu.Lock()
	raw, processed := s.pendingRaw, s.pendingProcessed
	s.pendingRaw, s.pendingProcessed = nil, nil
	s.mu.Unlock()

	if raw != nil {
		s.upload(&s.raw, raw)
	}
	if processed != nil {
		s.upload(&s.processed, processed)
	}

	s.draw()
	s.state.Store(int32(Rendering))
}

func (s *Surface) applyResize() {
	size := s.requested.Swap(nil)
	if size == nil {
		return
	}
	if err := s.dev.Viewport(size.X, size.Y); err != nil {
		s.deviceError("viewport", err)
		return
	}
	s.viewport = *size
	s.state.Store(int32(Sized))
	s.log.Info("surface sized", zap.Int("width", size.X), zap.Int("height", size.Y))
}

// upload converts f outside the lock, writes it into the inactive slot and
// flips the pair's current index once the upload finished.
func (s *Surface) upload(pair *slotPair, f *frame.Buffer) {
	if err := f.Validate(); err != nil {
		s.uploadFailures.Add(1)
		s.log.Warn("dropping malformed frame", zap.String("stream", pair.name), zap.Error(err))
		return
	}
	next := 1 - pair.current
	size := f.Size()

	if pair.size[next] != size {
		if err := s.dev.AllocTexture(pair.tex[next], size.X, size.Y); err != nil {
			s.uploadFailures.Add(1)
			s.deviceError("alloc "+pair.name+" texture", err)
			return
		}
		pair.size[next] = size
	}

	s.scratch = f.ToRGBA(s.scratch)
	if err := s.dev.UploadTexture(pair.tex[next], s.scratch); err != nil {
		s.uploadFailures.Add(1)
		s.deviceError("upload "+pair.name+" texture", err)
		return
	}

	s.mu.Lock()
	pair.current = next
	pair.filled = true
	s.mu.Unlock()
	s.uploads.Add(1)
}

func (s *Surface) selectPair() *slotPair {
	if s.showProcessed.Load() && s.processed.filled {
		return &s.processed
	}
	return &s.raw
}

func (s *Surface) draw() {
	pair := s.selectPair()
	if !pair.filled {
		s.skipped.Add(1)
		return
	}

	t := s.Orientation()
	key := aspectKey{mode: s.mode, surface: s.viewport, frame: pair.frameSize(), rotation: t.RotationDegrees}
	if key != s.aspect {
		s.aspect = key
		s.sx, s.sy = AspectScale(s.mode, key.surface.X, key.surface.Y, key.frame.X, key.frame.Y, key.rotation)
	}

	if err := s.dev.Clear(); err != nil {
		s.deviceError("clear", err)
	}
	if err := s.dev.DrawQuad(s.program, pair.tex[pair.current], DrawTransform(t, s.sx, s.sy), 1); err != nil {
		s.deviceError("draw", err)
	}
	if s.overlay != nil {
		if text := s.overlay(); text != "" {
			if err := s.dev.DrawText(8, 18, text); err != nil {
				s.deviceError("overlay", err)
			}
		}
	}
	if err := s.dev.Present(); err != nil {
		s.deviceError("present", err)
		return
	}
	s.drawn.Add(1)
}

func (s *Surface) deviceError(op string, err error) {
	s.deviceErrors.Add(1)
	s.log.Warn("device call failed", zap.String("op", op), zap.Error(err))
}
