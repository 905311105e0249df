package frame

import (
	"fmt"
	"image"
	"time"
)

// Buffer is a single captured luma plane.
//
// A Buffer is immutable once it has been handed to a consumer. Ownership moves
// with the pointer: capture → mailbox → worker → surface/publisher. The raw
// render path receives its own copy (see Clone) so the two sinks never alias.
type Buffer struct {
	// Bytes holds the luma samples. Sample (x, y) lives at
	// Bytes[y*RowStride + x*PixelStride].
	Bytes []byte

	// Width and Height are the visible dimensions in pixels.
	Width  int
	Height int

	// RowStride is the byte distance between the starts of consecutive rows.
	// It may exceed Width*PixelStride because of row padding.
	RowStride int

	// PixelStride is the byte distance between horizontally adjacent samples.
	// 1 for planar luma, 2 for packed YUYV.
	PixelStride int

	// CapturedAt is the time the source delivered the frame.
	CapturedAt time.Time
}

// New builds a Buffer and validates that bytes covers every addressed sample.
func New(bytes []byte, width, height, rowStride, pixelStride int, capturedAt time.Time) (*Buffer, error) {
	b := &Buffer{
		Bytes:       bytes,
		Width:       width,
		Height:      height,
		RowStride:   rowStride,
		PixelStride: pixelStride,
		CapturedAt:  capturedAt,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewGray wraps a tightly packed width*height plane.
func NewGray(pix []byte, width, height int, capturedAt time.Time) *Buffer {
	return &Buffer{
		Bytes:       pix,
		Width:       width,
		Height:      height,
		RowStride:   width,
		PixelStride: 1,
		CapturedAt:  capturedAt,
	}
}

// Validate checks the geometry against the backing slice.
func (b *Buffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", b.Width, b.Height)
	}
	if b.PixelStride < 1 {
		return fmt.Errorf("invalid pixel stride %d", b.PixelStride)
	}
	if b.RowStride < (b.Width-1)*b.PixelStride+1 {
		return fmt.Errorf("row stride %d too small for width %d (pixel stride %d)",
			b.RowStride, b.Width, b.PixelStride)
	}
	need := (b.Height-1)*b.RowStride + (b.Width-1)*b.PixelStride + 1
	if len(b.Bytes) < need {
		return fmt.Errorf("frame buffer holds %d bytes, need %d", len(b.Bytes), need)
	}
	return nil
}

// At returns the luma sample at (x, y).
func (b *Buffer) At(x, y int) uint8 {
	return b.Bytes[y*b.RowStride+x*b.PixelStride]
}

// Clone returns a deep copy that shares no memory with b.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Bytes = make([]byte, len(b.Bytes))
	copy(c.Bytes, b.Bytes)
	return &c
}

// Packed returns the plane as a tightly packed width*height slice.
// When b is already packed the backing slice is returned as is.
func (b *Buffer) Packed() []byte {
	if b.PixelStride == 1 && b.RowStride == b.Width && len(b.Bytes) == b.Width*b.Height {
		return b.Bytes
	}
	out := make([]byte, b.Width*b.Height)
	for y := 0; y < b.Height; y++ {
		row := b.Bytes[y*b.RowStride:]
		dst := out[y*b.Width : (y+1)*b.Width]
		if b.PixelStride == 1 {
			copy(dst, row[:b.Width])
			continue
		}
		for x := range dst {
			dst[x] = row[x*b.PixelStride]
		}
	}
	return out
}

// Gray returns the plane as an *image.Gray. The image shares memory with b
// when the layout allows it.
func (b *Buffer) Gray() *image.Gray {
	if b.PixelStride == 1 {
		return &image.Gray{
			Pix:    b.Bytes,
			Stride: b.RowStride,
			Rect:   image.Rect(0, 0, b.Width, b.Height),
		}
	}
	return &image.Gray{
		Pix:    b.Packed(),
		Stride: b.Width,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Size returns the frame dimensions as an image.Point.
func (b *Buffer) Size() image.Point {
	return image.Pt(b.Width, b.Height)
}
