package frame

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// RGBASize returns the number of bytes a 4-channel copy of b occupies.
func (b *Buffer) RGBASize() int {
	return b.Width * b.Height * 4
}

// ToRGBA converts the luma plane into a packed RGBA buffer by replicating each
// sample into R, G and B and setting A to 255.
//
// Rows are copied one by one so that RowStride padding and PixelStride gaps
// never leak into the output. dst is reused when it has enough capacity.
func (b *Buffer) ToRGBA(dst []byte) []byte {
	n := b.RGBASize()
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	for y := 0; y < b.Height; y++ {
		src := b.Bytes[y*b.RowStride:]
		out := dst[y*b.Width*4 : (y+1)*b.Width*4]
		for x := 0; x < b.Width; x++ {
			g := src[x*b.PixelStride]
			o := out[x*4 : x*4+4 : x*4+4]
			o[0] = g
			o[1] = g
			o[2] = g
			o[3] = 0xFF
		}
	}
	return dst
}

// EncodeJPEG encodes the plane as a grayscale JPEG.
//
// quality is clamped to [1, 100] by the encoder.
func EncodeJPEG(b *Buffer, quality int) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, b.Gray(), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
