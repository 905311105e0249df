package gpu

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync/atomic"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// SoftOptions configures the software device.
type SoftOptions struct {
	// ClearColor fills letterbox bars and undrawn areas.
	ClearColor color.RGBA

	// TextColor is used by DrawText.
	TextColor color.RGBA
}

// DefaultSoftOptions clears to opaque black and draws white text.
func DefaultSoftOptions() SoftOptions {
	return SoftOptions{
		ClearColor: color.RGBA{0, 0, 0, 255},
		TextColor:  color.RGBA{255, 255, 255, 255},
	}
}

// Soft is a CPU rasterizer implementing Device.
//
// It samples textures with nearest-neighbour filtering by mapping every
// viewport pixel back through the inverse draw transform, which is how a
// GLES2 fragment shader sees a textured quad. Presented frames are published
// as immutable snapshots.
type Soft struct {
	opts     SoftOptions
	nextID   uint32
	programs map[Program]struct{}
	textures map[Texture]*image.RGBA

	fb       *image.RGBA
	snapshot atomic.Pointer[image.RGBA]
}

// NewSoft returns a software device with an empty 0x0 viewport.
func NewSoft(opts SoftOptions) *Soft {
	return &Soft{
		opts:     opts,
		programs: make(map[Program]struct{}),
		textures: make(map[Texture]*image.RGBA),
		fb:       image.NewRGBA(image.Rect(0, 0, 0, 0)),
	}
}

func (s *Soft) id() uint32 {
	s.nextID++
	return s.nextID
}

// CreateProgram checks that both stages look like GLSL entry points.
func (s *Soft) CreateProgram(vertexSrc, fragmentSrc string) (Program, error) {
	if !strings.Contains(vertexSrc, "void main") {
		return 0, fmt.Errorf("gpu: vertex shader has no main")
	}
	if !strings.Contains(fragmentSrc, "void main") {
		return 0, fmt.Errorf("gpu: fragment shader has no main")
	}
	p := Program(s.id())
	s.programs[p] = struct{}{}
	return p, nil
}

// CreateTexture returns a new texture name with no storage.
func (s *Soft) CreateTexture() (Texture, error) {
	t := Texture(s.id())
	s.textures[t] = nil
	return t, nil
}

// AllocTexture gives t a zeroed width x height store.
func (s *Soft) AllocTexture(t Texture, width, height int) error {
	if _, ok := s.textures[t]; !ok {
		return ErrInvalidHandle
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gpu: invalid texture size %dx%d", width, height)
	}
	s.textures[t] = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// UploadTexture copies rgba into t's store.
func (s *Soft) UploadTexture(t Texture, rgba []byte) error {
	img, ok := s.textures[t]
	if !ok {
		return ErrInvalidHandle
	}
	if img == nil {
		return fmt.Errorf("gpu: texture %d has no storage", t)
	}
	if len(rgba) != len(img.Pix) {
		return fmt.Errorf("gpu: upload of %d bytes into %dx%d texture",
			len(rgba), img.Rect.Dx(), img.Rect.Dy())
	}
	copy(img.Pix, rgba)
	return nil
}

// Viewport resizes the framebuffer.
func (s *Soft) Viewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gpu: invalid viewport %dx%d", width, height)
	}
	if s.fb.Rect.Dx() != width || s.fb.Rect.Dy() != height {
		s.fb = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	return nil
}

// Clear fills the framebuffer with the clear color.
func (s *Soft) Clear() error {
	draw.Draw(s.fb, s.fb.Rect, image.NewUniform(s.opts.ClearColor), image.Point{}, draw.Src)
	return nil
}

// DrawQuad rasterizes t through mvp.
func (s *Soft) DrawQuad(p Program, t Texture, mvp Mat4, alpha float32) error {
	if _, ok := s.programs[p]; !ok {
		return ErrInvalidHandle
	}
	tex, ok := s.textures[t]
	if !ok {
		return ErrInvalidHandle
	}
	if tex == nil {
		return fmt.Errorf("gpu: texture %d has no storage", t)
	}
	inv, ok := mvp.Inverse2D()
	if !ok {
		return fmt.Errorf("gpu: singular transform")
	}

	w, h := s.fb.Rect.Dx(), s.fb.Rect.Dy()
	tw, th := tex.Rect.Dx(), tex.Rect.Dy()
	a := clamp01(alpha)

	for py := 0; py < h; py++ {
		ny := 1 - (float32(py)+0.5)/float32(h)*2
		for px := 0; px < w; px++ {
			nx := (float32(px)+0.5)/float32(w)*2 - 1
			qx, qy := inv.Apply(nx, ny)
			if qx < -1 || qx > 1 || qy < -1 || qy > 1 {
				continue
			}
			// quad (-1, 1) maps to texel (0, 0)
			u := int((qx + 1) / 2 * float32(tw))
			v := int((1 - qy) / 2 * float32(th))
			if u >= tw {
				u = tw - 1
			}
			if v >= th {
				v = th - 1
			}

			src := tex.Pix[v*tex.Stride+u*4 : v*tex.Stride+u*4+4]
			dst := s.fb.Pix[py*s.fb.Stride+px*4 : py*s.fb.Stride+px*4+4]
			if a >= 1 {
				copy(dst, src)
				continue
			}
			for i := 0; i < 3; i++ {
				dst[i] = uint8(float32(src[i])*a + float32(dst[i])*(1-a))
			}
			dst[3] = 255
		}
	}
	return nil
}

// DrawText renders text with the 7x13 basic font.
func (s *Soft) DrawText(x, y int, text string) error {
	d := font.Drawer{
		Dst:  s.fb,
		Src:  image.NewUniform(s.opts.TextColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
	return nil
}

// Present publishes a copy of the framebuffer as the current snapshot.
func (s *Soft) Present() error {
	snap := image.NewRGBA(s.fb.Rect)
	copy(snap.Pix, s.fb.Pix)
	s.snapshot.Store(snap)
	return nil
}

// Snapshot returns the last presented frame.
func (s *Soft) Snapshot() image.Image {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil
	}
	return snap
}

// Texture returns the store behind t for inspection, or nil.
func (s *Soft) Texture(t Texture) *image.RGBA {
	return s.textures[t]
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
