package gpu

import (
	"errors"
	"image/color"
	"testing"
)

const testVS = "void main() { gl_Position = uMVP * aPosition; }"
const testFS = "void main() { gl_FragColor = texture2D(uTexture, vTexCoord); }"

// quadrants is a 2x2 texture: red, green / blue, white.
var quadrants = []byte{
	255, 0, 0, 255, 0, 255, 0, 255,
	0, 0, 255, 255, 255, 255, 255, 255,
}

func newDevice(t *testing.T, w, h int) (*Soft, Program, Texture) {
	t.Helper()
	d := NewSoft(DefaultSoftOptions())
	p, err := d.CreateProgram(testVS, testFS)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	tex, _ := d.CreateTexture()
	if err := d.AllocTexture(tex, 2, 2); err != nil {
		t.Fatalf("AllocTexture: %v", err)
	}
	if err := d.UploadTexture(tex, quadrants); err != nil {
		t.Fatalf("UploadTexture: %v", err)
	}
	if err := d.Viewport(w, h); err != nil {
		t.Fatalf("Viewport: %v", err)
	}
	return d, p, tex
}

func rgbaAt(d *Soft, x, y int) color.RGBA {
	return d.Snapshot().At(x, y).(color.RGBA)
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

func TestDrawQuad_Transforms(t *testing.T) {
	tests := []struct {
		name string
		mvp  Mat4
		want [4]color.RGBA // top-left, top-right, bottom-left, bottom-right
	}{
		{"identity", Identity(), [4]color.RGBA{red, green, blue, white}},
		{"rotate 90", RotateZ(90), [4]color.RGBA{green, white, red, blue}},
		{"rotate 180", RotateZ(180), [4]color.RGBA{white, blue, green, red}},
		{"mirror x", Scale(-1, 1), [4]color.RGBA{green, red, white, blue}},
		{"mirror y", Scale(1, -1), [4]color.RGBA{blue, white, red, green}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, p, tex := newDevice(t, 2, 2)
			d.Clear()
			if err := d.DrawQuad(p, tex, tt.mvp, 1); err != nil {
				t.Fatalf("DrawQuad: %v", err)
			}
			d.Present()

			got := [4]color.RGBA{rgbaAt(d, 0, 0), rgbaAt(d, 1, 0), rgbaAt(d, 0, 1), rgbaAt(d, 1, 1)}
			if got != tt.want {
				t.Errorf("corners = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDrawQuad_Letterbox(t *testing.T) {
	d, p, tex := newDevice(t, 4, 2)
	d.Clear()
	if err := d.DrawQuad(p, tex, Scale(0.5, 1), 1); err != nil {
		t.Fatal(err)
	}
	d.Present()

	for _, x := range []int{0, 3} {
		if got := rgbaAt(d, x, 0); got != black {
			t.Errorf("pixel (%d,0) = %v, want clear color", x, got)
		}
	}
	if got := rgbaAt(d, 1, 0); got != red {
		t.Errorf("pixel (1,0) = %v, want red", got)
	}
	if got := rgbaAt(d, 2, 1); got != white {
		t.Errorf("pixel (2,1) = %v, want white", got)
	}
}

func TestDrawQuad_Alpha(t *testing.T) {
	d, p, tex := newDevice(t, 2, 2)
	d.Clear()
	d.DrawQuad(p, tex, Identity(), 0.5)
	d.Present()

	got := rgbaAt(d, 1, 1)
	if got.R < 120 || got.R > 135 || got.A != 255 {
		t.Errorf("half-alpha white over black = %v", got)
	}
}

func TestDrawQuad_Errors(t *testing.T) {
	d, p, tex := newDevice(t, 2, 2)

	if err := d.DrawQuad(Program(999), tex, Identity(), 1); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("unknown program: err = %v", err)
	}
	if err := d.DrawQuad(p, Texture(999), Identity(), 1); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("unknown texture: err = %v", err)
	}
	if err := d.DrawQuad(p, tex, Scale(0, 1), 1); err == nil {
		t.Error("singular transform should fail")
	}

	empty, _ := d.CreateTexture()
	if err := d.DrawQuad(p, empty, Identity(), 1); err == nil {
		t.Error("texture without storage should fail")
	}
	if err := d.UploadTexture(tex, make([]byte, 3)); err == nil {
		t.Error("short upload should fail")
	}
	if err := d.Viewport(0, 10); err == nil {
		t.Error("zero viewport should fail")
	}
	if _, err := d.CreateProgram("", testFS); err == nil {
		t.Error("empty vertex shader should fail")
	}
}

func TestSnapshot_Immutable(t *testing.T) {
	d, p, tex := newDevice(t, 2, 2)
	if d.Snapshot() != nil {
		t.Fatal("snapshot before first Present should be nil")
	}

	d.Clear()
	d.DrawQuad(p, tex, Identity(), 1)
	d.Present()
	first := d.Snapshot()

	d.Clear()
	d.Present()

	if got := first.At(0, 0).(color.RGBA); got != red {
		t.Errorf("earlier snapshot changed to %v", got)
	}
	if got := rgbaAt(d, 0, 0); got != black {
		t.Errorf("latest snapshot = %v, want cleared", got)
	}
}

func TestDrawText(t *testing.T) {
	d := NewSoft(DefaultSoftOptions())
	d.Viewport(40, 16)
	d.Clear()
	d.DrawText(2, 12, "FPS")
	d.Present()

	lit := 0
	b := d.Snapshot().Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if d.Snapshot().At(x, y).(color.RGBA) != black {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("DrawText left the framebuffer untouched")
	}
}

func TestMat4(t *testing.T) {
	tests := []struct {
		name         string
		m            Mat4
		x, y         float32
		wantX, wantY float32
	}{
		{"identity", Identity(), 1, 2, 1, 2},
		{"scale", Scale(2, 3), 1, 1, 2, 3},
		{"rotate 90", RotateZ(90), 1, 0, 0, 1},
		{"rotate 270", RotateZ(270), 1, 0, 0, -1},
		{"rotate -90", RotateZ(-90), 1, 0, 0, -1},
		{"scale after rotate", Scale(2, 1).Mul(RotateZ(90)), 1, 0, 0, 1},
		{"rotate after scale", RotateZ(90).Mul(Scale(2, 1)), 1, 0, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.m.Apply(tt.x, tt.y)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, x, y, tt.wantX, tt.wantY)
			}

			inv, ok := tt.m.Inverse2D()
			if !ok {
				t.Fatal("matrix should be invertible")
			}
			bx, by := inv.Apply(x, y)
			if bx != tt.x || by != tt.y {
				t.Errorf("inverse round trip = (%v, %v), want (%v, %v)", bx, by, tt.x, tt.y)
			}
		})
	}
}
