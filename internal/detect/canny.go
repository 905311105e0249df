package detect

import (
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/blur"

	"github.com/ironsheep/edgecam/internal/frame"
)

// DefaultBlurRadius matches a 5x5 Gaussian with sigma ≈ 1.4.
const DefaultBlurRadius = 1.4

// Canny is a pure-Go Canny edge detector.
//
// The zero value is not usable; construct with NewCanny.
type Canny struct {
	blurRadius float64
}

// NewCanny returns a detector that pre-blurs with the given Gaussian radius.
// A radius <= 0 disables the blur.
func NewCanny(blurRadius float64) *Canny {
	return &Canny{blurRadius: blurRadius}
}

// Detect runs Canny edge detection on the luma plane.
//
// Output pixels are 255 on edges and 0 elsewhere. Thresholds are gradient
// magnitudes on the 0-255 luma scale; when low > high the two are swapped.
//
// # Algorithm
//
//  1. Gaussian blur (bild/blur) to reduce sensor noise
//  2. Sobel gradients, magnitude = sqrt(Gx² + Gy²), direction = atan2(Gy, Gx)
//  3. Non-maximum suppression along the quantised gradient direction
//  4. Hysteresis: pixels >= high seed edges, pixels >= low are kept only when
//     8-connected to a seed
func (c *Canny) Detect(f *frame.Buffer, low, high int) (*frame.Buffer, error) {
	if f == nil {
		return nil, fmt.Errorf("canny: nil frame")
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	if low > high {
		low, high = high, low
	}

	width, height := f.Width, f.Height
	gray := c.smooth(f)

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	sobel(gray, width, height, magnitude, direction)

	suppressed := suppress(magnitude, direction, width, height)
	edges := hysteresis(suppressed, width, height, float64(low), float64(high))

	return frame.NewGray(edges, width, height, f.CapturedAt), nil
}

// smooth returns the blurred plane as float64 luma in [0, 255].
func (c *Canny) smooth(f *frame.Buffer) []float64 {
	width, height := f.Width, f.Height
	out := make([]float64, width*height)

	if c.blurRadius <= 0 {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out[y*width+x] = float64(f.At(x, y))
			}
		}
		return out
	}

	blurred := blur.Gaussian(f.Gray(), c.blurRadius)
	for y := 0; y < height; y++ {
		row := blurred.Pix[y*blurred.Stride:]
		for x := 0; x < width; x++ {
			// gray input replicates into R, G and B; read R
			out[y*width+x] = float64(row[x*4])
		}
	}
	return out
}

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// sobel fills magnitude and direction. Borders replicate edge pixels.
func sobel(gray []float64, width, height int, magnitude, direction []float64) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				py := clamp(y+ky, 0, height-1)
				for kx := -1; kx <= 1; kx++ {
					px := clamp(x+kx, 0, width-1)
					v := gray[py*width+px]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			i := y*width + x
			magnitude[i] = math.Sqrt(gx*gx + gy*gy)
			direction[i] = math.Atan2(gy, gx)
		}
	}
}

// suppress thins edges by keeping local maxima along the gradient direction.
// Image rows grow downwards, so a gradient angle near +45° points to the
// (+1,+1) neighbour. The one-pixel border is always zero.
func suppress(magnitude, direction []float64, width, height int) []float64 {
	out := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			angle := direction[i]
			mag := magnitude[i]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1 = magnitude[i-1]
				n2 = magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1 = magnitude[i-width-1]
				n2 = magnitude[i+width+1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1 = magnitude[i-width]
				n2 = magnitude[i+width]
			default:
				n1 = magnitude[i-width+1]
				n2 = magnitude[i+width-1]
			}

			if mag >= n1 && mag >= n2 {
				out[i] = mag
			}
		}
	}
	return out
}

// hysteresis marks strong pixels and grows them through 8-connected weak ones.
func hysteresis(suppressed []float64, width, height int, low, high float64) []byte {
	edges := make([]byte, width*height)
	stack := make([]int, 0, 64)

	for i, v := range suppressed {
		if v > 0 && v >= high && edges[i] == 0 {
			edges[i] = 255
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jx, jy := j%width, j/width
			for dy := -1; dy <= 1; dy++ {
				ny := jy + dy
				if ny < 0 || ny >= height {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := jx + dx
					if nx < 0 || nx >= width {
						continue
					}
					n := ny*width + nx
					if edges[n] == 0 && suppressed[n] > 0 && suppressed[n] >= low {
						edges[n] = 255
						stack = append(stack, n)
					}
				}
			}
		}
	}
	return edges
}

// clamp constrains val to [lo, hi]; used for border replication.
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
