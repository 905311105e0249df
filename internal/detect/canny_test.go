package detect

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/ironsheep/edgecam/internal/frame"
)

// stepFrame builds a plane that is black left of splitX and white from splitX on.
func stepFrame(width, height, splitX int) *frame.Buffer {
	pix := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := splitX; x < width; x++ {
			pix[y*width+x] = 255
		}
	}
	return frame.NewGray(pix, width, height, time.Now())
}

// padded copies f into a plane with extra bytes at the end of every row.
func padded(f *frame.Buffer, pad int, fill byte) *frame.Buffer {
	stride := f.Width + pad
	pix := bytes.Repeat([]byte{fill}, stride*f.Height)
	for y := 0; y < f.Height; y++ {
		copy(pix[y*stride:], f.Bytes[y*f.Width:(y+1)*f.Width])
	}
	out, _ := frame.New(pix, f.Width, f.Height, stride, 1, f.CapturedAt)
	return out
}

func TestCanny_Dimensions(t *testing.T) {
	c := NewCanny(DefaultBlurRadius)
	out, err := c.Detect(stepFrame(64, 48, 32), 50, 150)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if out.Width != 64 || out.Height != 48 {
		t.Errorf("dimensions: got %dx%d, want 64x48", out.Width, out.Height)
	}
	if out.RowStride != 64 || out.PixelStride != 1 || len(out.Bytes) != 64*48 {
		t.Errorf("output must be tightly packed, got stride %d/%d len %d", out.RowStride, out.PixelStride, len(out.Bytes))
	}
}

func TestCanny_UniformImage(t *testing.T) {
	pix := bytes.Repeat([]byte{128}, 50*50)
	out, err := NewCanny(DefaultBlurRadius).Detect(frame.NewGray(pix, 50, 50, time.Now()), 50, 150)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	// interior only: border handling is up to the blur backend
	for y := 5; y < 45; y++ {
		for x := 5; x < 45; x++ {
			if v := out.At(x, y); v != 0 {
				t.Fatalf("uniform image should have no edges, (%d,%d) = %d", x, y, v)
			}
		}
	}
}

func TestCanny_StrongEdge(t *testing.T) {
	out, err := NewCanny(DefaultBlurRadius).Detect(stepFrame(100, 100, 50), 50, 150)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	edgeFound := false
	for x := 47; x <= 53; x++ {
		if out.At(x, 50) == 255 {
			edgeFound = true
			break
		}
	}
	if !edgeFound {
		t.Error("expected an edge near x=50")
	}

	// far from the step there must be nothing
	for _, x := range []int{10, 25, 75, 90} {
		if out.At(x, 50) != 0 {
			t.Errorf("unexpected edge at x=%d", x)
		}
	}
}

// planeFrame builds a width x height plane that is white where white(x, y).
func planeFrame(width, height int, white func(x, y int) bool) *frame.Buffer {
	pix := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if white(x, y) {
				pix[y*width+x] = 255
			}
		}
	}
	return frame.NewGray(pix, width, height, time.Now())
}

func TestCanny_EdgeWidthIndependentOfOrientation(t *testing.T) {
	const size = 40
	tests := []struct {
		name  string
		white func(x, y int) bool
	}{
		{"vertical", func(x, y int) bool { return x >= size/2 }},
		{"anti-diagonal", func(x, y int) bool { return x+y >= size }},
		{"diagonal", func(x, y int) bool { return x > y }},
	}

	c := NewCanny(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Detect(planeFrame(size, size, tt.white), 50, 150)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			n := 0
			for x := 0; x < size; x++ {
				if out.At(x, size/2) == 255 {
					n++
				}
			}
			if n != 2 {
				t.Errorf("row %d has %d edge pixels, want 2", size/2, n)
			}
		})
	}
}

func TestCanny_HonorsRowStride(t *testing.T) {
	c := NewCanny(DefaultBlurRadius)
	src := stepFrame(40, 30, 20)

	want, err := c.Detect(src, 50, 150)
	if err != nil {
		t.Fatalf("Detect (packed) failed: %v", err)
	}
	got, err := c.Detect(padded(src, 7, 0xFF), 50, 150)
	if err != nil {
		t.Fatalf("Detect (padded) failed: %v", err)
	}
	if !bytes.Equal(got.Bytes, want.Bytes) {
		t.Error("padding bytes changed the detector output")
	}
}

func TestCanny_HonorsPixelStride(t *testing.T) {
	c := NewCanny(0)
	src := stepFrame(16, 8, 8)

	// interleave luma with junk chroma bytes like YUYV
	pix := make([]byte, len(src.Bytes)*2)
	for i, v := range src.Bytes {
		pix[i*2] = v
		pix[i*2+1] = 0x80
	}
	yuyv, err := frame.New(pix, 16, 8, 32, 2, time.Now())
	if err != nil {
		t.Fatalf("frame.New failed: %v", err)
	}

	want, _ := c.Detect(src, 50, 150)
	got, err := c.Detect(yuyv, 50, 150)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !bytes.Equal(got.Bytes, want.Bytes) {
		t.Error("pixel stride not honored")
	}
}

func TestCanny_SwappedThresholds(t *testing.T) {
	c := NewCanny(DefaultBlurRadius)
	src := stepFrame(40, 40, 20)
	a, _ := c.Detect(src, 50, 150)
	b, _ := c.Detect(src, 150, 50)
	if !bytes.Equal(a.Bytes, b.Bytes) {
		t.Error("low > high should behave like the swapped pair")
	}
}

func TestCanny_DifferentThresholds(t *testing.T) {
	tests := []struct {
		name      string
		low, high int
	}{
		{"low thresholds", 10, 50},
		{"medium thresholds", 50, 150},
		{"high thresholds", 100, 200},
		{"zero thresholds", 0, 0},
	}

	src := stepFrame(50, 50, 25)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewCanny(DefaultBlurRadius).Detect(src, tt.low, tt.high)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			for _, v := range out.Bytes {
				if v != 0 && v != 255 {
					t.Fatalf("output must be binary, got %d", v)
				}
			}
		})
	}
}

func TestCanny_InvalidInput(t *testing.T) {
	c := NewCanny(DefaultBlurRadius)
	if _, err := c.Detect(nil, 50, 150); err == nil {
		t.Error("expected error for nil frame")
	}
	bad := &frame.Buffer{Bytes: []byte{1, 2}, Width: 10, Height: 10, RowStride: 10, PixelStride: 1}
	if _, err := c.Detect(bad, 50, 150); err == nil {
		t.Error("expected error for truncated frame")
	}
}

func TestFunc(t *testing.T) {
	var d Detector = Func(func(f *frame.Buffer, low, high int) (*frame.Buffer, error) {
		return nil, ErrUnavailable
	})
	if _, err := d.Detect(stepFrame(2, 2, 1), 1, 2); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}
