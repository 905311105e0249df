package frame

import (
	"bytes"
	"image/jpeg"
	"testing"
	"time"
)

func TestToRGBA_StrideAware(t *testing.T) {
	// 4x2 plane with 2 padding bytes per row (row stride 6).
	plane := []byte{
		1, 2, 3, 4, 0xEE, 0xEE,
		5, 6, 7, 8, 0xEE, 0xEE,
	}
	b, err := New(plane, 4, 2, 6, 1, time.Now())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rgba := b.ToRGBA(nil)
	if len(rgba) != 4*2*4 {
		t.Fatalf("len: got %d, want %d", len(rgba), 32)
	}

	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	for i, g := range want {
		px := rgba[i*4 : i*4+4]
		if px[0] != g || px[1] != g || px[2] != g || px[3] != 0xFF {
			t.Errorf("pixel %d: got %v, want [%d %d %d 255]", i, px, g, g, g)
		}
	}
	for i, v := range rgba {
		if v == 0xEE {
			t.Fatalf("padding byte leaked into output at index %d", i)
		}
	}
}

func TestToRGBA_PixelStride(t *testing.T) {
	// YUYV-like packing: luma on even bytes.
	plane := []byte{10, 99, 20, 99, 30, 99, 40, 99}
	b, err := New(plane, 2, 2, 4, 2, time.Now())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rgba := b.ToRGBA(nil)
	for i, g := range []byte{10, 20, 30, 40} {
		if rgba[i*4] != g {
			t.Errorf("pixel %d: got %d, want %d", i, rgba[i*4], g)
		}
	}
}

func TestToRGBA_ReusesBuffer(t *testing.T) {
	b := NewGray(make([]byte, 16), 4, 4, time.Now())
	scratch := make([]byte, 0, 128)
	out := b.ToRGBA(scratch)
	if &out[0] != &scratch[:1][0] {
		t.Error("ToRGBA should reuse a buffer with enough capacity")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name                    string
		size, w, h, row, pixel int
		wantErr                 bool
	}{
		{"packed", 12, 4, 3, 4, 1, false},
		{"padded", 16, 4, 3, 6, 1, false},
		{"short buffer", 10, 4, 3, 4, 1, true},
		{"stride below width", 12, 4, 3, 3, 1, true},
		{"zero width", 12, 0, 3, 4, 1, true},
		{"zero pixel stride", 12, 4, 3, 4, 0, true},
		{"yuyv", 16, 4, 2, 8, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(make([]byte, tt.size), tt.w, tt.h, tt.row, tt.pixel, time.Now())
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPacked(t *testing.T) {
	plane := []byte{
		1, 2, 0, 0,
		3, 4, 0, 0,
	}
	b, _ := New(plane, 2, 2, 4, 1, time.Now())
	got := b.Packed()
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("Packed: got %v, want [1 2 3 4]", got)
	}

	packed := NewGray([]byte{1, 2, 3, 4}, 2, 2, time.Now())
	if &packed.Packed()[0] != &packed.Bytes[0] {
		t.Error("Packed should not copy an already packed plane")
	}
}

func TestClone(t *testing.T) {
	b := NewGray([]byte{1, 2, 3, 4}, 2, 2, time.Now())
	c := b.Clone()
	c.Bytes[0] = 200
	if b.Bytes[0] != 1 {
		t.Error("Clone shares memory with the original")
	}
}

func TestEncodeJPEG(t *testing.T) {
	pix := make([]byte, 32*16)
	for i := range pix {
		pix[i] = uint8(i % 256)
	}
	b := NewGray(pix, 32, 16, time.Now())

	data, err := EncodeJPEG(b, 70)
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid JPEG: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Errorf("dimensions: got %dx%d, want 32x16", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestEncodeJPEG_InvalidFrame(t *testing.T) {
	b := &Buffer{Bytes: []byte{1}, Width: 4, Height: 4, RowStride: 4, PixelStride: 1}
	if _, err := EncodeJPEG(b, 70); err == nil {
		t.Error("expected error for truncated frame")
	}
}
